package natives

import (
	"io"
	"net/http"

	"github.com/ramsaycarslaw/mt/internal/value"
	"github.com/ramsaycarslaw/mt/internal/vm"
)

// registerHTTP grounds on original_source/module/http.c's
// httpGetNative. net/http is stdlib rather than an ecosystem client;
// no third-party HTTP client appears anywhere in the retrieval pack,
// see DESIGN.md.
func registerHTTP(m *vm.VM, strs *value.Strings) {
	c := newClass("http").
		add("get", func(argc int, args []value.Value) value.Value {
			checkArgc("get", argc, 1)
			url := asString("get", args[0]).Chars
			resp, err := http.Get(url)
			if err != nil {
				panic("http.get: " + err.Error())
			}
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				panic("http.get: " + err.Error())
			}
			return value.FromObj(strs.Intern(string(body)))
		})

	m.DefineGlobal("http", value.FromObj(c.obj))
}
