package commands

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"sort"
	"strings"
	"time"

	"txkv/internal/common"
	"txkv/internal/datastore"
)

var ErrUnknownCommand = errors.New("unknown command")

// ArgSpec describes exactly one positional argument
type ArgSpec struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// CommandSpec is what each file builds and calls Register on
type CommandSpec struct {
	Name    string
	Args    []ArgSpec
	Handler func(ds *datastore.Datastore, cmd *common.Command) ([]byte, error)
}

// Usage renders the command with its arguments, e.g. INSERT <key> <value>.
func (c *CommandSpec) Usage() string {
	var b strings.Builder
	b.WriteString(c.Name)
	for _, arg := range c.Args {
		if arg.Required {
			fmt.Fprintf(&b, " <%s>", arg.Name)
		} else {
			fmt.Fprintf(&b, " [%s]", arg.Name)
		}
	}
	return b.String()
}

var registry = make(map[string]*CommandSpec)

// Register wires up your CommandSpec into the global registry
func Register[I any](
	name string,
	args []ArgSpec,
	ensureInputs func(*common.Command) (I, error),
	execute func(*datastore.Datastore, I) ([]byte, error),
) {
	if name == "" {
		log.Fatalf("command name cannot be empty")
	}

	uppercasedName := strings.ToUpper(name)
	if _, ok := registry[uppercasedName]; ok {
		log.Fatalf("command with name %q already registered", name)
	}

	if ensureInputs == nil {
		log.Fatalf("command %q must supply ensureInput function", name)
	}
	if execute == nil {
		log.Fatalf("command %q must supply execute function", name)
	}

	handler := func(ds *datastore.Datastore, cmd *common.Command) ([]byte, error) {
		slog.Debug("Validating command", "command", name, "args", cmd.Args)
		in, err := ensureInputs(cmd)
		if err != nil {
			slog.Debug("Command validation failed", "command", name, "error", err)
			return nil, err
		}

		slog.Debug("Executing command", "command", name)
		t0 := time.Now()
		res, err := execute(ds, in)
		dt := time.Since(t0)

		if err != nil {
			slog.Error("Command failed", "command", name, "duration", dt, "error", err)
		} else {
			slog.Debug("Command done", "command", name, "duration", dt)
		}
		return res, err
	}

	registry[uppercasedName] = &CommandSpec{
		Name:    uppercasedName,
		Args:    args,
		Handler: handler,
	}
}

// Get returns the CommandSpec registered under name, if any
func Get(name string) (*CommandSpec, bool) {
	c, ok := registry[strings.ToUpper(name)]
	return c, ok
}

// All lists the registered commands sorted by name.
func All() []*CommandSpec {
	specs := make([]*CommandSpec, 0, len(registry))
	for _, spec := range registry {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// Execute looks up cmd.Operation and runs it against ds.
func Execute(ds *datastore.Datastore, cmd *common.Command) ([]byte, error) {
	spec, ok := Get(cmd.Operation)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Operation)
	}
	return spec.Handler(ds, cmd)
}

// ensureArgCount checks that cmd carries exactly the named arguments.
func ensureArgCount(cmd *common.Command, names ...string) error {
	if len(cmd.Args) == len(names) {
		return nil
	}
	if len(names) == 0 {
		return errors.New("command must have no arguments")
	}
	return fmt.Errorf("command must have %d argument(s) - %s", len(names), strings.Join(names, ", "))
}

func render(res common.Result) ([]byte, error) {
	return []byte(res.String()), nil
}
