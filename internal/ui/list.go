package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/floody/internal/models"
)

var (
	_ list.DefaultItem = fileItem{}
	_ list.DefaultItem = dcmItem{}
)

// fileItem wraps [models.RecentFile] to implement [list.DefaultItem].
type fileItem struct {
	file models.RecentFile
}

func (i fileItem) FilterValue() string { return i.file.Name }
func (i fileItem) Title() string       { return i.file.Name }
func (i fileItem) Description() string {
	desc := i.file.ID
	if i.file.Recency != "" {
		desc = fmt.Sprintf("%s • %s", i.file.Recency, desc)
	}
	return desc
}

// dcmItem wraps [models.DcmObject] to implement [list.DefaultItem].
type dcmItem struct {
	object models.DcmObject
}

func (i dcmItem) FilterValue() string { return i.object.Name }
func (i dcmItem) Title() string       { return i.object.Label() }
func (i dcmItem) Description() string { return i.object.Type }

// renderItems draws items as a two-line picker with the cursor row highlighted.
func renderItems(items []list.DefaultItem, cursor int) string {
	var b strings.Builder
	s := styles.items
	for i, item := range items {
		title, desc := s.NormalTitle, s.NormalDesc
		if i == cursor {
			title, desc = s.SelectedTitle, s.SelectedDesc
		}
		b.WriteString(title.Render(item.Title()))
		b.WriteString("\n")
		if d := item.Description(); d != "" {
			b.WriteString(desc.Render(d))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func fileItems(files []models.RecentFile) []list.DefaultItem {
	items := make([]list.DefaultItem, len(files))
	for i, f := range files {
		items[i] = fileItem{file: f}
	}
	return items
}

// indexOf returns the position of id in objects, or -1.
func indexOf(objects []models.DcmObject, id string) int {
	for i, o := range objects {
		if o.ID.String() == id {
			return i
		}
	}
	return -1
}

// labelOf returns the label of the object with id, falling back to the id itself.
func labelOf(objects []models.DcmObject, id string) string {
	if i := indexOf(objects, id); i >= 0 {
		return dcmItem{object: objects[i]}.Title()
	}
	return id
}
