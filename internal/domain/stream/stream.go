// Package stream holds live-stream records, the ordered result collection and
// the wire envelopes served to the carousel.
package stream

// Record is one stream entry decoded from an upstream page. It is never persisted.
type Record struct {
	UserName     string
	UserLogin    string
	Title        string
	ThumbnailURL string
	Tags         []string
}

// Page is one upstream page.
// Cursor is empty on the last page. HasData is false when the payload had no data field.
type Page struct {
	Records []Record
	Cursor  string
	HasData bool
}

// Stream is an accepted stream as exposed to clients.
// Field names are a wire contract with the carousel widget.
type Stream struct {
	UserName     string   `json:"user_name"`
	UserLogin    string   `json:"user_login"`
	Title        string   `json:"title"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Tags         []string `json:"tags"`
}

// FromRecord projects a record onto the client shape.
// UserName falls back to UserLogin; Tags is never nil.
func FromRecord(r Record) Stream {
	name := r.UserName
	if name == "" {
		name = r.UserLogin
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return Stream{
		UserName:     name,
		UserLogin:    r.UserLogin,
		Title:        r.Title,
		ThumbnailURL: r.ThumbnailURL,
		Tags:         tags,
	}
}
