package styles

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/panetree/internal/domain/entity"
)

// SnapshotsCLIRenderer renders non-interactive CLI output for the
// snapshots subcommands (e.g. `panetree snapshots list`, `rm`, `prune`).
type SnapshotsCLIRenderer struct {
	theme *Theme
}

func NewSnapshotsCLIRenderer(theme *Theme) *SnapshotsCLIRenderer {
	return &SnapshotsCLIRenderer{theme: theme}
}

func (r *SnapshotsCLIRenderer) RenderEmptyList() string {
	return r.theme.Subtle.Render("No saved layouts found.")
}

func (r *SnapshotsCLIRenderer) RenderList(items []*entity.SavedLayout, dbPath string) string {
	if len(items) == 0 {
		return r.RenderEmptyList()
	}

	var b strings.Builder
	title := fmt.Sprintf("%s %s", r.theme.Highlight.Render(IconTree), r.theme.Title.Render("Saved layouts"))
	b.WriteString(title)
	b.WriteString("\n\n")

	for _, s := range items {
		b.WriteString(r.renderOne(s))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(r.theme.Subtle.Render(fmt.Sprintf("%s %s", IconDatabase, dbPath)))
	return b.String()
}

func (r *SnapshotsCLIRenderer) renderOne(s *entity.SavedLayout) string {
	name := r.theme.Highlight.Render(s.Name)
	windows := r.theme.BadgeMuted.Render(fmt.Sprintf("%d windows", s.LeafCount))
	nodes := r.theme.BadgeMuted.Render(fmt.Sprintf("%d nodes", s.NodeCount))
	updated := r.theme.Subtle.Render(fmt.Sprintf("%s %s", IconClock, relativeTime(s.UpdatedAt)))

	return fmt.Sprintf("  %s  %s %s  %s", name, windows, nodes, updated)
}

func (r *SnapshotsCLIRenderer) RenderShowHeader(name string) string {
	return r.theme.BoxHeader.Render(fmt.Sprintf("%s %s", IconRestore, name))
}

func (r *SnapshotsCLIRenderer) RenderDeleted(name string) string {
	return fmt.Sprintf("%s Layout %s deleted.",
		r.theme.SuccessStyle.Render(IconTrash),
		r.theme.Highlight.Render(name),
	)
}

func (r *SnapshotsCLIRenderer) RenderPruned(removed, keep int) string {
	if removed == 0 {
		return fmt.Sprintf("%s Nothing to prune, %d or fewer layouts stored.",
			r.theme.SuccessStyle.Render(IconCheck), keep)
	}
	return fmt.Sprintf("%s Pruned %d layouts, kept the %d most recent.",
		r.theme.SuccessStyle.Render(IconCheck), removed, keep)
}

func (r *SnapshotsCLIRenderer) RenderError(err error) string {
	return fmt.Sprintf("%s %v", r.theme.ErrorStyle.Render(IconX), err)
}

const (
	hoursPerDay = 24
	daysPerWeek = 7
)

// relativeTime returns a human-readable relative time string.
func relativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < hoursPerDay*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < daysPerWeek*hoursPerDay*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/hoursPerDay))
	default:
		return fmt.Sprintf("%dw ago", int(diff.Hours()/hoursPerDay/daysPerWeek))
	}
}
