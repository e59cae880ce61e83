package provider

import "context"

// DelimiterLister supports delimiter-based listing.
//
// Albums are discovered this way: a root listing with delimiter "/" returns the
// album prefixes as CommonPrefixes, and a listing under "<album>/" returns the
// album's photos as Objects.
//
// Implementations should map to provider-native delimiter listing when available
// (e.g., S3 ListObjectsV2 with Delimiter).
type DelimiterLister interface {
	ListWithDelimiter(ctx context.Context, opts ListWithDelimiterOptions) (*ListWithDelimiterResult, error)
}

// ListWithDelimiterOptions configures a delimiter listing operation.
type ListWithDelimiterOptions struct {
	// Prefix filters results to keys starting with this value.
	Prefix string

	// Delimiter groups keys (e.g., "/").
	Delimiter string

	// ContinuationToken resumes listing from a previous ListWithDelimiterResult.
	ContinuationToken string

	// MaxKeys limits the number of keys returned per page.
	MaxKeys int
}

// ListWithDelimiterResult contains a page of results from a delimiter listing.
type ListWithDelimiterResult struct {
	// Objects are object summaries directly under the requested Prefix.
	Objects []ObjectSummary

	// CommonPrefixes are the immediate child prefixes.
	CommonPrefixes []string

	// ContinuationToken is used to retrieve the next page.
	ContinuationToken string

	// IsTruncated indicates whether more results are available.
	IsTruncated bool
}

// ListAllWithDelimiter drains every page of a delimiter listing.
//
// Objects and CommonPrefixes keep the order the store returned them in.
func ListAllWithDelimiter(ctx context.Context, l DelimiterLister, prefix, delimiter string) (*ListWithDelimiterResult, error) {
	out := &ListWithDelimiterResult{}
	token := ""
	for {
		page, err := l.ListWithDelimiter(ctx, ListWithDelimiterOptions{
			Prefix:            prefix,
			Delimiter:         delimiter,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		out.Objects = append(out.Objects, page.Objects...)
		out.CommonPrefixes = append(out.CommonPrefixes, page.CommonPrefixes...)

		if !page.IsTruncated || page.ContinuationToken == "" {
			return out, nil
		}
		token = page.ContinuationToken
	}
}
