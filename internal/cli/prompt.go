package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"golang.org/x/term"
)

// input is the shared standard input. Every prompt reads through the
// same buffer so piped answers are consumed in order.
type input struct {
	r  *bufio.Reader
	fd int // -1 when not a terminal
}

func newInput(r io.Reader) *input {
	fd := -1
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &input{r: bufio.NewReader(r), fd: fd}
}

func (in *input) isTerminal() bool { return in.fd >= 0 }

// readLine returns the next line without its line ending.
func (in *input) readLine() (string, error) {
	line, err := in.r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ============================================================
// Confirm dialog driver
// ============================================================

// Prompter answers the confirm dialog from the terminal. On a terminal
// it reads single keys in raw mode: s/y/Enter confirm, n/Esc/Ctrl-C
// cancel. Otherwise it reads a line, where an empty line confirms.
type Prompter struct {
	confirm   *ui.Confirm
	in        *input
	out       io.Writer
	assumeYes bool

	mu sync.Mutex
}

func NewPrompter(confirm *ui.Confirm, in io.Reader, out io.Writer, assumeYes bool) *Prompter {
	return newPrompter(confirm, newInput(in), out, assumeYes)
}

func newPrompter(confirm *ui.Confirm, in *input, out io.Writer, assumeYes bool) *Prompter {
	return &Prompter{
		confirm:   confirm,
		in:        in,
		out:       out,
		assumeYes: assumeYes,
	}
}

// Attach starts answering dialogs as they open. detach stops it.
func (p *Prompter) Attach() (detach func()) {
	opened := make(chan ui.ConfirmOptions, 1)
	unsubscribe := p.confirm.Subscribe(func(open *ui.ConfirmOptions) {
		if open == nil {
			return
		}
		select {
		case opened <- *open:
		default:
		}
	})

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case opts := <-opened:
				p.answer(opts)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			close(done)
		})
	}
}

func (p *Prompter) answer(opts ui.ConfirmOptions) {
	p.mu.Lock()
	defer p.mu.Unlock()

	renderDialog(p.out, opts)
	if p.assumeYes {
		fmt.Fprintln(p.out, mutedStyle.Render("--yes: confirmado"))
		p.confirm.Confirm()
		return
	}

	ok, err := p.read()
	if err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out, mutedStyle.Render("leitura falhou: "+err.Error()))
	}
	if ok {
		p.confirm.Confirm()
		return
	}
	p.confirm.Escape()
}

func (p *Prompter) read() (bool, error) {
	if !p.in.isTerminal() {
		line, err := p.in.readLine()
		if err != nil {
			return false, err
		}
		return lineConfirms(line), nil
	}

	state, err := term.MakeRaw(p.in.fd)
	if err != nil {
		return false, err
	}
	defer term.Restore(p.in.fd, state)

	for {
		b, err := p.in.r.ReadByte()
		if err != nil {
			return false, err
		}
		if ok, decided := keyConfirms(b); decided {
			return ok, nil
		}
	}
}

// keyConfirms maps a raw key to an answer. decided is false for keys
// that do nothing.
func keyConfirms(b byte) (ok, decided bool) {
	switch b {
	case 's', 'S', 'y', 'Y', '\r', '\n':
		return true, true
	case 'n', 'N', 0x1b, 0x03:
		return false, true
	}
	return false, false
}

func lineConfirms(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "s", "sim", "y", "yes":
		return true
	}
	return false
}

// ============================================================
// Line input
// ============================================================

// lineIO reads input lines. On a terminal it uses term.Terminal so that
// output written while waiting for input keeps the prompt intact.
type lineIO interface {
	io.Writer
	ReadLine() (string, error)
	SetPrompt(prompt string)
}

type plainLineIO struct {
	in     *input
	out    io.Writer
	prompt string
}

func (l *plainLineIO) Write(b []byte) (int, error) { return l.out.Write(b) }

func (l *plainLineIO) SetPrompt(prompt string) { l.prompt = prompt }

func (l *plainLineIO) ReadLine() (string, error) {
	if l.prompt != "" {
		fmt.Fprint(l.out, l.prompt)
	}
	return l.in.readLine()
}

type terminalLineIO struct {
	*term.Terminal
}

// newLineIO returns a line reader over in and out and the function that
// restores the terminal.
func newLineIO(in *input, out io.Writer, prompt string) (lineIO, func(), error) {
	if !in.isTerminal() {
		return &plainLineIO{in: in, out: out, prompt: prompt}, func() {}, nil
	}
	state, err := term.MakeRaw(in.fd)
	if err != nil {
		return nil, nil, err
	}
	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in.r, out}, prompt)
	return terminalLineIO{t}, func() { term.Restore(in.fd, state) }, nil
}

// readSecret reads a password without echo on a terminal, or a line
// otherwise.
func readSecret(in *input, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	if !in.isTerminal() {
		return in.readLine()
	}
	b, err := term.ReadPassword(in.fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
