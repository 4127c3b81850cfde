package leadwizard

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/terrasite/leadform/internal/notice"
	"github.com/terrasite/leadform/internal/tui/theme"
)

// noticeExpiredMsg is sent when the notice with seq reaches its TTL.
type noticeExpiredMsg struct {
	seq uint64
}

// boardPresenter shows controller notices on the board and remembers
// their sequence numbers until the model schedules their expiry.
type boardPresenter struct {
	board   *notice.Board
	pending []uint64
}

func (p *boardPresenter) Show(kind notice.Kind, text string) uint64 {
	seq := p.board.Show(kind, text)
	p.pending = append(p.pending, seq)
	return seq
}

// expiryCmds returns one timer per notice shown since the last call.
func (p *boardPresenter) expiryCmds() tea.Cmd {
	if len(p.pending) == 0 {
		return nil
	}
	ttl := p.board.TTL()
	cmds := make([]tea.Cmd, 0, len(p.pending))
	for _, seq := range p.pending {
		cmds = append(cmds, expireAfter(seq, ttl))
	}
	p.pending = p.pending[:0]
	return tea.Batch(cmds...)
}

func expireAfter(seq uint64, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// renderNotice draws the current notice as a one-line toast.
func renderNotice(n notice.Notice, width int) string {
	s := theme.Current().S()

	style := s.ToastInfo
	icon := "ℹ "
	switch n.Kind {
	case notice.KindError:
		style = s.ToastError
		icon = "✗ "
	case notice.KindSuccess:
		style = s.ToastSuccess
		icon = "✓ "
	}

	content := style.Render(icon + n.Text)
	if width > 4 && lipgloss.Width(content) > width {
		content = style.Width(width).Render(icon + n.Text)
	}
	return content
}
