package media

import "context"

// Asset is either an already hosted file, identified by URL, or raw bytes
// still waiting to be uploaded. At most one of the two fields is set.
type Asset struct {
	URL  string
	Data []byte
}

// FromURL wraps an already hosted file.
func FromURL(url string) Asset { return Asset{URL: url} }

// FromBytes wraps raw upload data.
func FromBytes(data []byte) Asset { return Asset{Data: data} }

// Empty reports whether the asset holds neither a URL nor data.
func (a Asset) Empty() bool { return a.URL == "" && len(a.Data) == 0 }

// Resolve returns the asset's public URL, uploading the raw bytes to the
// given folder first when needed. An empty asset resolves to "".
func (a Asset) Resolve(ctx context.Context, up Uploader, folder string) (string, error) {
	if len(a.Data) == 0 {
		return a.URL, nil
	}
	return up.Upload(ctx, a.Data, folder)
}
