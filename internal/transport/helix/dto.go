package helix

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/streamreel/internal/domain/stream"
)

// streamsResponse mirrors the Helix Get Streams payload. Data is a pointer so a
// missing field can be told apart from an empty page.
type streamsResponse struct {
	Data       *[]streamDTO `json:"data"`
	Pagination struct {
		Cursor string `json:"cursor"`
	} `json:"pagination"`
}

type streamDTO struct {
	UserName     string          `json:"user_name"`
	UserLogin    string          `json:"user_login"`
	Title        string          `json:"title"`
	ThumbnailURL string          `json:"thumbnail_url"`
	Tags         json.RawMessage `json:"tags"`
}

func decodePage(body []byte) (stream.Page, error) {
	var resp streamsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return stream.Page{}, fmt.Errorf("decode streams response: %w", err)
	}
	if resp.Data == nil {
		return stream.Page{}, nil
	}

	records := make([]stream.Record, 0, len(*resp.Data))
	for _, d := range *resp.Data {
		records = append(records, stream.Record{
			UserName:     d.UserName,
			UserLogin:    d.UserLogin,
			Title:        d.Title,
			ThumbnailURL: d.ThumbnailURL,
			Tags:         decodeTags(d.Tags),
		})
	}
	return stream.Page{
		Records: records,
		Cursor:  resp.Pagination.Cursor,
		HasData: true,
	}, nil
}

// decodeTags returns the tag list, or an empty list when tags is null or not a list of strings.
func decodeTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}
