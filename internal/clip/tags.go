package clip

import (
	"encoding/json"

	"github.com/clip-in/clip-server/internal/model"
)

// embeddedTag 는 저장소의 태그 관계 임베딩 결과.
// 뷰에 따라 tag_id/tag_name 또는 id/name 키로 온다.
type embeddedTag struct {
	TagID   *int64  `json:"tag_id"`
	ID      int64   `json:"id"`
	TagName *string `json:"tag_name"`
	Name    string  `json:"name"`
}

// toClipTag 는 두 키 체계를 하나로 정규화한다.
func (t embeddedTag) toClipTag() model.ClipTag {
	out := model.ClipTag{TagID: t.ID, TagName: t.Name}
	if t.TagID != nil {
		out.TagID = *t.TagID
	}
	if t.TagName != nil {
		out.TagName = *t.TagName
	}
	return out
}

// normalizeTags 는 태그 관계를 균일한 목록으로 정규화한다.
// 관계는 객체 하나, 배열, 부재(null) 어느 형태로든 도착할 수 있다.
func normalizeTags(raw json.RawMessage) []model.ClipTag {
	if len(raw) == 0 || string(raw) == "null" {
		return []model.ClipTag{}
	}

	var list []embeddedTag
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]model.ClipTag, 0, len(list))
		for _, tag := range list {
			out = append(out, tag.toClipTag())
		}
		return out
	}

	var single embeddedTag
	if err := json.Unmarshal(raw, &single); err == nil {
		return []model.ClipTag{single.toClipTag()}
	}

	return []model.ClipTag{}
}
