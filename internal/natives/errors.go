package natives

import (
	stderrors "github.com/pkg/errors"

	"github.com/ramsaycarslaw/mt/internal/value"
	"github.com/ramsaycarslaw/mt/internal/vm"
)

// registerErrors grounds on original_source/module/errors.c's
// errorRaise, backed by github.com/pkg/errors. Both functions return
// the resulting error message as an interned string; the Go error value
// and its cause chain are not kept.
func registerErrors(m *vm.VM, strs *value.Strings) {
	c := newClass("errors").
		add("new", func(argc int, args []value.Value) value.Value {
			checkArgc("new", argc, 1)
			err := stderrors.New(asString("new", args[0]).Chars)
			return value.FromObj(strs.Intern(err.Error()))
		}).
		add("wrap", func(argc int, args []value.Value) value.Value {
			checkArgc("wrap", argc, 2)
			base := stderrors.New(asString("wrap", args[0]).Chars)
			wrapped := stderrors.Wrap(base, asString("wrap", args[1]).Chars)
			return value.FromObj(strs.Intern(wrapped.Error()))
		})

	m.DefineGlobal("errors", value.FromObj(c.obj))
}
