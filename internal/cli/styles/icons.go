// Package styles provides reusable lipgloss-based TUI components.
package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconVersion   = "" //  tag
	IconGitBranch = "" //  git branch
	IconCalendar  = "" //  calendar
	IconGo        = "" //  go gopher
	IconGithub    = "" //  github

	// Status
	IconCheck   = "" // check
	IconX       = "" // x
	IconWarning = "" // warning
	IconInfo    = "" // info

	// Workspace / snapshots
	IconTree     = "" // tree
	IconPane     = "" // columns
	IconTab      = "" // table
	IconClock    = "" // clock
	IconDatabase = "" // database
	IconTrash    = "" // trash
	IconRestore  = "" // rotate-left (restore)
	IconConfig   = "" // config
)
