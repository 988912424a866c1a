package terminal

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"

	"github.com/latestcomment/boardroom-chat/internal/models"
	"github.com/latestcomment/boardroom-chat/internal/render"
)

const clearLine = "\r\x1b[2K"

var speakerColors = map[string]*color.Color{
	"agent-daraima": color.New(color.FgYellow, color.Bold),
	"agent-justice": color.New(color.FgHiRed, color.Bold),
	"agent-moses":   color.New(color.FgBlue, color.Bold),
	"agent-clovet":  color.New(color.FgMagenta, color.Bold),
	"agent-emma":    color.New(color.FgHiMagenta, color.Bold),
}

var (
	defaultSpeaker = color.New(color.FgCyan, color.Bold)
	userColor      = color.New(color.FgGreen, color.Bold)
	faint          = color.New(color.Faint)
	errColor       = color.New(color.FgRed)
)

// View prints the board meeting to a terminal. Typing placeholders occupy
// the current line and are erased in place.
type View struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	seq    int
	typing string
}

func NewView(out, errOut io.Writer) *View {
	return &View{out: out, errOut: errOut}
}

func (v *View) SetSubmit(enabled bool, label string) {
	if enabled {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, faint.Sprint(label))
}

func (v *View) ClearInput() {}

func (v *View) AppendUserMessage(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "👤 %s\n", userColor.Sprint("You"))
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintln(v.out, "   "+line)
	}
	fmt.Fprintln(v.out)
}

func (v *View) ShowTyping(speaker string) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	v.typing = strconv.Itoa(v.seq)
	fmt.Fprint(v.out, faint.Sprintf("… %s is reviewing...", speaker))
	return v.typing
}

func (v *View) RemoveTyping(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if id != v.typing {
		return
	}
	v.typing = ""
	fmt.Fprint(v.out, clearLine)
}

func (v *View) AppendMessage(msg models.StreamMessage) {
	v.mu.Lock()
	defer v.mu.Unlock()

	name := defaultSpeaker
	if c, ok := speakerColors[msg.StyleClass]; ok {
		name = c
	}
	fmt.Fprintf(v.out, "%s %s\n", msg.Icon, name.Sprint(msg.Speaker))
	for _, line := range msg.Fragment.Lines(renderTable) {
		fmt.Fprintln(v.out, "   "+line)
	}
	fmt.Fprintln(v.out)
}

func (v *View) ScrollToBottom() {}

func (v *View) ShowError(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.errOut, errColor.Sprint("✗ "+message))
}

func renderTable(t render.Table) string {
	tbl := table.New().Border(lipgloss.NormalBorder())
	for _, row := range t.Rows {
		tbl.Row(row...)
	}
	return tbl.String()
}
