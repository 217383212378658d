package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Colour palette for severity-coded console messages
var (
	colorInfo    = lipgloss.Color("39")  // Blue
	colorSuccess = lipgloss.Color("34")  // Green
	colorWarning = lipgloss.Color("214") // Orange
	colorError   = lipgloss.Color("196") // Red
	colorMuted   = lipgloss.Color("240") // Dark gray
	colorBullet  = lipgloss.Color("75")  // Light blue
)

const banner = `
██╗  ██╗ █████╗ ███████╗██╗  ██╗██╗      █████╗ ███████╗███████╗██████╗
██║  ██║██╔══██╗██╔════╝██║  ██║██║     ██╔══██╗██╔════╝██╔════╝██╔══██╗
███████║███████║███████╗███████║██║     ███████║███████╗█████╗  ██████╔╝
██╔══██║██╔══██║╚════██║██╔══██║██║     ██╔══██║╚════██║██╔══╝  ██╔══██╗
██║  ██║██║  ██║███████║██║  ██║███████╗██║  ██║███████║███████╗██║  ██║
╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚══════╝╚══════╝╚═╝  ╚═╝`

// console renders severity-coded messages. Info, success, warning and list
// output go to out; errors go to errOut.
type console struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool

	info    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	errStyl lipgloss.Style
	muted   lipgloss.Style
	bullet  lipgloss.Style
	title   lipgloss.Style
}

// newConsole builds styles against the given writers. With noColor every
// style is plain text.
func newConsole(out, errOut io.Writer, noColor, quiet bool) *console {
	c := &console{out: out, errOut: errOut, quiet: quiet}

	if noColor {
		plain := lipgloss.NewStyle()
		c.info, c.success, c.warning, c.errStyl = plain, plain, plain, plain
		c.muted, c.bullet, c.title = plain, plain, plain
		return c
	}

	r := lipgloss.NewRenderer(out)
	er := lipgloss.NewRenderer(errOut)
	c.info = r.NewStyle().Foreground(colorInfo)
	c.success = r.NewStyle().Foreground(colorSuccess)
	c.warning = r.NewStyle().Foreground(colorWarning)
	c.errStyl = er.NewStyle().Foreground(colorError)
	c.muted = r.NewStyle().Foreground(colorMuted)
	c.bullet = r.NewStyle().Foreground(colorBullet)
	c.title = r.NewStyle().Foreground(colorInfo).Bold(true)
	return c
}

// Banner prints the startup banner
func (c *console) Banner(version string) {
	if c.quiet {
		return
	}
	fmt.Fprintln(c.out, c.title.Render(banner))
	fmt.Fprintln(c.out, c.muted.Render(fmt.Sprintf("🔒 Intelligent File Deduplicator CLI | %s", version)))
	fmt.Fprintln(c.out)
}

// Info prints an informational message
func (c *console) Info(format string, args ...interface{}) {
	if c.quiet {
		return
	}
	fmt.Fprintln(c.out, c.info.Render("ℹ️  "+fmt.Sprintf(format, args...)))
}

// Success prints a success message
func (c *console) Success(format string, args ...interface{}) {
	fmt.Fprintln(c.out, c.success.Render("✅ "+fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func (c *console) Warning(format string, args ...interface{}) {
	fmt.Fprintln(c.out, c.warning.Render("⚠️  "+fmt.Sprintf(format, args...)))
}

// Error prints an error message to the error stream
func (c *console) Error(format string, args ...interface{}) {
	fmt.Fprintln(c.errOut, c.errStyl.Render("❌ "+fmt.Sprintf(format, args...)))
}

// Heading prints an unstyled line, used for section headers
func (c *console) Heading(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// List prints items as a bulleted list
func (c *console) List(items []string) {
	for _, item := range items {
		fmt.Fprintf(c.out, "%s %s\n", c.bullet.Render("•"), item)
	}
}

// Muted prints secondary detail
func (c *console) Muted(format string, args ...interface{}) {
	if c.quiet {
		return
	}
	fmt.Fprintln(c.out, c.muted.Render(fmt.Sprintf(format, args...)))
}
