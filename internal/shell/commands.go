package shell

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/leapstack-labs/matshell/pkg/codec"
	"github.com/leapstack-labs/matshell/pkg/matrix"
)

type runFunc func(ctx context.Context, in *Interpreter, args []string) error

type command struct {
	Name string
	// Arity counts every token, the keyword included.
	Arity int
	Usage string
	Desc  string
	Run   runFunc
}

type commandTable struct {
	byName map[string]command
}

func (t *commandTable) register(cmd command) {
	if _, ok := t.byName[cmd.Name]; ok {
		panic(fmt.Sprintf("shell: duplicate command %q", cmd.Name))
	}
	t.byName[cmd.Name] = cmd
}

func (t *commandTable) resolve(name string) (command, bool) {
	cmd, ok := t.byName[name]
	return cmd, ok
}

func (t *commandTable) names() []string {
	out := make([]string, 0, len(t.byName))
	for name := range t.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func builtinCommands() *commandTable {
	t := &commandTable{byName: make(map[string]command)}
	for _, cmd := range []command{
		{Name: "display", Arity: 2, Usage: "display <name>", Desc: "Print a matrix", Run: runDisplay},
		{Name: "add", Arity: 4, Usage: "add <a> <b> <result>", Desc: "Store the elementwise sum of a and b", Run: runAdd},
		{Name: "duplicate", Arity: 3, Usage: "duplicate <source> <new>", Desc: "Copy a matrix under a new name", Run: runDuplicate},
		{Name: "equal", Arity: 3, Usage: "equal <a> <b>", Desc: "Compare the data of two matrices; both names are required", Run: runEqual},
		{Name: "shift", Arity: 4, Usage: "shift <name> <l|r> <amount>", Desc: "Bitwise shift every element in place", Run: runShift},
		{Name: "read", Arity: 2, Usage: "read <file>", Desc: "Load a matrix from a file", Run: runRead},
		{Name: "write", Arity: 2, Usage: "write <name>", Desc: "Save a matrix to a file named after it", Run: runWrite},
		{Name: "create", Arity: 4, Usage: "create <name> <rows> <cols>", Desc: "Create a zero-filled matrix", Run: runCreate},
		{Name: "random", Arity: 4, Usage: "random <name> <low> <high>", Desc: "Fill a matrix with values in [low, high]", Run: runRandom},
		{Name: "list", Arity: 1, Usage: "list", Desc: "Show the occupied slots", Run: runList},
		{Name: "help", Arity: 1, Usage: "help", Desc: "Show this help", Run: runHelp},
	} {
		t.register(cmd)
	}
	return t
}

func runDisplay(_ context.Context, in *Interpreter, args []string) error {
	m, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	in.out.Matrix(m, in.grid)
	return nil
}

func runAdd(ctx context.Context, in *Interpreter, args []string) error {
	a, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	b, err := in.lookup(args[1])
	if err != nil {
		return err
	}
	sum, err := matrix.New(args[2], a.Rows, a.Cols)
	if err != nil {
		return err
	}
	if err := matrix.Add(a, b, sum); err != nil {
		return err
	}
	if err := in.store(ctx, sum); err != nil {
		return err
	}
	in.out.Success(fmt.Sprintf("Added %s and %s into %s", args[0], args[1], sum.Name))
	return nil
}

func runDuplicate(ctx context.Context, in *Interpreter, args []string) error {
	src, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	dup, err := matrix.New(args[1], src.Rows, src.Cols)
	if err != nil {
		return err
	}
	same, err := matrix.Duplicate(src, dup)
	if err != nil {
		return err
	}
	if !same {
		return fmt.Errorf("copy of %s does not match its source", src.Name)
	}
	srcName := src.Name
	if err := in.store(ctx, dup); err != nil {
		return err
	}
	in.out.Success(fmt.Sprintf("Duplication of %s into %s finished", srcName, dup.Name))
	return nil
}

func runEqual(_ context.Context, in *Interpreter, args []string) error {
	a, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	b, err := in.lookup(args[1])
	if err != nil {
		return err
	}
	if matrix.Equal(a, b) {
		in.out.Println("SAME DATA IN BOTH")
	} else {
		in.out.Println("DIFFERENT DATA IN BOTH")
	}
	return nil
}

func runShift(_ context.Context, in *Interpreter, args []string) error {
	m, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	dir, err := matrix.ParseDirection(args[1])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	amount, err := parseUint32("amount", args[2])
	if err != nil {
		return err
	}
	if err := matrix.Shift(m, dir, amount); err != nil {
		return err
	}
	in.out.Success(fmt.Sprintf("Matrix (%s) has been shifted %s by %d", m.Name, dir, amount))
	return nil
}

func runRead(ctx context.Context, in *Interpreter, args []string) error {
	m, err := codec.ReadFile(in.path(args[0]))
	if err != nil {
		return err
	}
	if err := in.store(ctx, m); err != nil {
		return err
	}
	in.out.Success(fmt.Sprintf("Matrix (%s) is read from the filesystem as %s", args[0], m.Name))
	return nil
}

func runWrite(_ context.Context, in *Interpreter, args []string) error {
	m, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	if !filepath.IsLocal(m.Name) {
		return fmt.Errorf("%w: %q does not name a file inside %s", matrix.ErrInvalidName, m.Name, in.dataDir)
	}
	path := filepath.Join(in.dataDir, m.Name)
	if err := codec.WriteFile(path, m); err != nil {
		return err
	}
	in.out.Success(fmt.Sprintf("Matrix (%s) is written out to %s", m.Name, path))
	return nil
}

func runCreate(ctx context.Context, in *Interpreter, args []string) error {
	if err := matrix.ValidateName(args[0]); err != nil {
		return err
	}
	rows, err := parseUint32("rows", args[1])
	if err != nil {
		return err
	}
	cols, err := parseUint32("cols", args[2])
	if err != nil {
		return err
	}
	m, err := matrix.New(args[0], rows, cols)
	if err != nil {
		return err
	}
	if err := in.store(ctx, m); err != nil {
		return err
	}
	in.out.Success(fmt.Sprintf("Created Matrix (%s,%d,%d)", m.Name, m.Rows, m.Cols))
	return nil
}

func runRandom(_ context.Context, in *Interpreter, args []string) error {
	m, err := in.lookup(args[0])
	if err != nil {
		return err
	}
	low, err := parseUint32("lower bound", args[1])
	if err != nil {
		return err
	}
	high, err := parseUint32("upper bound", args[2])
	if err != nil {
		return err
	}
	if err := matrix.Randomize(m, in.rng, low, high); err != nil {
		return err
	}
	in.out.Success(fmt.Sprintf("Matrix (%s) is randomized between %d %d", m.Name, low, high))
	return nil
}

func runList(_ context.Context, in *Interpreter, _ []string) error {
	slots := in.reg.Slots()
	if len(slots) == 0 {
		in.out.Muted("(no matrices)")
		return nil
	}
	rows := make([][]string, 0, len(slots))
	for _, s := range slots {
		rows = append(rows, []string{
			strconv.Itoa(s.Index),
			s.Matrix.Name,
			strconv.FormatUint(uint64(s.Matrix.Rows), 10),
			strconv.FormatUint(uint64(s.Matrix.Cols), 10),
		})
	}
	in.out.Table([]string{"slot", "name", "rows", "cols"}, rows)
	in.out.Muted(fmt.Sprintf("%d of %d slots used, next insert goes to slot %d",
		len(slots), in.reg.Capacity(), in.reg.Counter()%uint64(in.reg.Capacity())))
	return nil
}

func runHelp(_ context.Context, in *Interpreter, _ []string) error {
	rows := make([][]string, 0, len(in.cmds.byName)+1)
	for _, name := range in.cmds.names() {
		cmd := in.cmds.byName[name]
		rows = append(rows, []string{cmd.Usage, cmd.Desc})
	}
	rows = append(rows, []string{"exit", "Leave the shell"})
	in.out.Table([]string{"command", "description"}, rows)
	return nil
}
