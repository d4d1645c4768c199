package natives

import (
	"github.com/rs/zerolog"

	"github.com/ramsaycarslaw/mt/internal/value"
	"github.com/ramsaycarslaw/mt/internal/vm"
)

// registerLog grounds on original_source/module/log.c's
// logPrintNative/logFatalNative pair, backed by the
// github.com/rs/zerolog logger the driver builds through internal/diag,
// so script-level log.* calls use the format and level chosen by the
// --log and --verbose flags.
func registerLog(m *vm.VM, strs *value.Strings, log zerolog.Logger) {
	c := newClass("log").
		add("info", func(argc int, args []value.Value) value.Value {
			checkArgc("info", argc, 1)
			log.Info().Msg(args[0].String())
			return value.Nil()
		}).
		add("warn", func(argc int, args []value.Value) value.Value {
			checkArgc("warn", argc, 1)
			log.Warn().Msg(args[0].String())
			return value.Nil()
		}).
		add("error", func(argc int, args []value.Value) value.Value {
			checkArgc("error", argc, 1)
			log.Error().Msg(args[0].String())
			return value.Nil()
		}).
		add("debug", func(argc int, args []value.Value) value.Value {
			checkArgc("debug", argc, 1)
			log.Debug().Msg(args[0].String())
			return value.Nil()
		})

	m.DefineGlobal("log", value.FromObj(c.obj))
}
