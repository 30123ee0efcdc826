package client

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"txkv/internal/commands"
)

// REPL reads command lines, forwards them to an Executor and keeps the
// prompt in sync with the session's transaction.
type REPL struct {
	exec   Executor
	name   string
	prompt string
	out    io.Writer
	txID   string
}

func NewREPL(exec Executor, name string, out io.Writer) *REPL {
	r := &REPL{exec: exec, name: name, out: out}
	r.updatePrompt()
	return r
}

func (r *REPL) Prompt() string {
	return r.prompt
}

// Run reads from the terminal until quit, EOF or a lost connection.
func (r *REPL) Run(historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.prompt,
		HistoryFile:     historyFile,
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Fprintf(r.out, "%s - type 'help' for available commands or 'quit' to exit\n", r.name)
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		quit, err := r.HandleLine(line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		rl.SetPrompt(r.prompt)
	}
}

// HandleLine processes one input line. An error means the executor can no
// longer be used.
func (r *REPL) HandleLine(line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	switch strings.ToUpper(strings.Fields(line)[0]) {
	case "QUIT", "EXIT", `\Q`:
		return true, nil
	case "HELP", `\H`:
		r.showHelp()
		return false, nil
	}

	reply, err := r.exec.Execute(line)
	if err != nil {
		r.txID = ""
		r.updatePrompt()
		return false, err
	}
	fmt.Fprintln(r.out, reply)

	if changesTransaction(line) {
		if err := r.refresh(); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (r *REPL) refresh() error {
	status, err := fetchStatus(r.exec)
	if err != nil {
		return err
	}
	r.txID = status.TransactionID
	r.updatePrompt()
	return nil
}

func changesTransaction(line string) bool {
	switch strings.ToUpper(strings.Fields(line)[0]) {
	case "BEGIN", "COMMIT", "ROLLBACK":
		return true
	}
	return false
}

func (r *REPL) updatePrompt() {
	if r.txID == "" {
		r.prompt = r.name + "> "
		return
	}
	id := r.txID
	if len(id) > 8 {
		id = id[:8]
	}
	r.prompt = fmt.Sprintf("%s[%s]> ", r.name, id)
}

func (r *REPL) showHelp() {
	fmt.Fprintln(r.out, "Commands:")
	for _, spec := range commands.All() {
		fmt.Fprintf(r.out, "  %s\n", spec.Usage())
	}
	fmt.Fprintln(r.out, "  HELP")
	fmt.Fprintln(r.out, "  QUIT")
}

func completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0)
	for _, spec := range commands.All() {
		items = append(items, readline.PcItem(spec.Name))
	}
	items = append(items, readline.PcItem("HELP"), readline.PcItem("QUIT"))
	return readline.NewPrefixCompleter(items...)
}
