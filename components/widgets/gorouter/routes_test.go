package gorouter

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"
	"testing"

	router "github.com/goliatone/go-router"

	widgets "github.com/edgekit/go-widgets/components/widgets"
	"github.com/edgekit/go-widgets/components/widgets/commands"
)

func TestRegisterValidatesConfig(t *testing.T) {
	err := Register(Config[struct{}]{})
	if err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
}

func TestRegisterHTMLRoute(t *testing.T) {
	mock := newMockRouter()
	layout := widgets.Layout{
		Areas: map[string][]widgets.WidgetInstance{
			"dashboard.main": {
				{ID: "w1", DefinitionID: "widget.gauge"},
			},
		},
	}
	service := &stubLayoutResolver{layout: layout}
	renderer := &stubRenderer{}
	controller := widgets.NewController(service, widgets.WithRenderer(renderer))

	cfg := Config[struct{}]{
		Router:     mock,
		Controller: controller,
		API:        noopExecutor{},
	}
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	handlerKey := "GET:/dashboard/"
	h, ok := mock.routes[handlerKey]
	if !ok {
		t.Fatalf("expected dashboard route to be registered, have %v", keys(mock.routes))
	}

	ctx := newMockContext()
	if err := h(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(ctx.body) == 0 {
		t.Fatalf("expected response body")
	}
	if renderer.calls == 0 {
		t.Fatalf("renderer not invoked")
	}
}

func TestRegisterMountsAPIRoutes(t *testing.T) {
	mock := newMockRouter()
	controller := widgets.NewController(&stubLayoutResolver{})
	cfg := Config[struct{}]{
		Router:     mock,
		Controller: controller,
		API:        noopExecutor{},
	}
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	for _, key := range []string{
		"POST:/dashboard/widgets",
		"PUT:/dashboard/widgets/:id",
		"DELETE:/dashboard/widgets/:id",
		"PUT:/dashboard/widgets/:id/source",
		"POST:/dashboard/widgets/reorder",
		"POST:/dashboard/widgets/refresh",
		"POST:/dashboard/commands",
		"POST:/dashboard/preferences",
	} {
		if _, ok := mock.routes[key]; !ok {
			t.Fatalf("expected route %s, have %v", key, keys(mock.routes))
		}
	}
}

func keys(m map[string]router.HandlerFunc) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// --- Test helpers ---

type mockRouter struct {
	prefix string
	routes map[string]router.HandlerFunc
	ws     map[string]func(router.WebSocketContext) error
}

func newMockRouter() *mockRouter {
	return &mockRouter{
		routes: map[string]router.HandlerFunc{},
		ws:     map[string]func(router.WebSocketContext) error{},
	}
}

func (m *mockRouter) Group(prefix string) router.Router[struct{}] {
	return &mockRouter{
		prefix: m.prefix + prefix,
		routes: m.routes,
		ws:     m.ws,
	}
}

func (m *mockRouter) Mount(prefix string) router.Router[struct{}] {
	return m.Group(prefix)
}

func (m *mockRouter) WithGroup(path string, cb func(r router.Router[struct{}])) router.Router[struct{}] {
	cb(m.Group(path))
	return m
}

func (m *mockRouter) Use(mw ...router.MiddlewareFunc) router.Router[struct{}] { return m }

func (m *mockRouter) Handle(method router.HTTPMethod, path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(method), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Patch(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.PATCH), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Head(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.HEAD), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Static(prefix, root string, config ...router.Static) router.Router[struct{}] {
	return m
}

func (m *mockRouter) Routes() []router.RouteDefinition { return nil }

func (m *mockRouter) ValidateRoutes() []error { return nil }

func (m *mockRouter) PrintRoutes() {}

func (m *mockRouter) WithLogger(logger router.Logger) router.Router[struct{}] { return m }

func (m *mockRouter) record(method, path string, handler router.HandlerFunc) {
	full := m.prefix + path
	m.routes[method+":"+full] = handler
}

func (m *mockRouter) Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.GET), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.POST), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.PUT), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.DELETE), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo {
	full := m.prefix + path
	m.ws[full] = handler
	return mockRouteInfo{}
}

type mockRouteInfo struct{}

func (mockRouteInfo) SetName(string) router.RouteInfo        { return mockRouteInfo{} }
func (mockRouteInfo) SetDescription(string) router.RouteInfo { return mockRouteInfo{} }
func (mockRouteInfo) SetSummary(string) router.RouteInfo     { return mockRouteInfo{} }
func (mockRouteInfo) AddTags(...string) router.RouteInfo     { return mockRouteInfo{} }
func (mockRouteInfo) AddParameter(name, in string, required bool, schema map[string]any) router.RouteInfo {
	return mockRouteInfo{}
}
func (mockRouteInfo) SetRequestBody(desc string, required bool, content map[string]any) router.RouteInfo {
	return mockRouteInfo{}
}
func (mockRouteInfo) AddResponse(code int, desc string, content map[string]any) router.RouteInfo {
	return mockRouteInfo{}
}

type mockContext struct {
	ctx     context.Context
	headers map[string]string
	body    []byte
	locals  map[any]any
	params  map[string]string
	query   map[string]string
	status  int
}

func newMockContext() *mockContext {
	return &mockContext{
		ctx:     context.Background(),
		headers: map[string]string{},
		locals:  map[any]any{},
		params:  map[string]string{},
		query:   map[string]string{},
	}
}

func (m *mockContext) Context() context.Context {
	return m.ctx
}

func (m *mockContext) SetHeader(k, v string) router.Context {
	m.headers[k] = v
	return m
}

func (m *mockContext) Header(name string) string { return m.headers[name] }

func (m *mockContext) Send(b []byte) error {
	m.body = append([]byte{}, b...)
	return nil
}

func (m *mockContext) JSON(code int, v any) error {
	m.status = code
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.body = data
	return nil
}

func (m *mockContext) Body() []byte { return m.body }

func (m *mockContext) Param(name string, defaultValue ...string) string {
	if v, ok := m.params[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) Query(name string, defaultValue ...string) string {
	if v, ok := m.query[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) Locals(key any, value ...any) any {
	if len(value) == 0 {
		return m.locals[key]
	}
	m.locals[key] = value[0]
	return value[0]
}

func (m *mockContext) Method() string { return "GET" }

func (m *mockContext) Path() string { return "" }

func (m *mockContext) ParamsInt(key string, defaultValue int) int {
	if v, ok := m.params[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func (m *mockContext) QueryValues(name string) []string {
	if v, ok := m.query[name]; ok {
		return []string{v}
	}
	return nil
}

func (m *mockContext) QueryInt(name string, defaultValue int) int {
	if v, ok := m.query[name]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func (m *mockContext) Queries() map[string]string { return m.query }

func (m *mockContext) LocalsMerge(key any, value map[string]any) map[string]any {
	m.locals[key] = value
	return value
}

func (m *mockContext) Render(name string, bind any, layouts ...string) error { return nil }

func (m *mockContext) Cookie(cookie *router.Cookie) {}

func (m *mockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) CookieParser(out any) error { return nil }

func (m *mockContext) Redirect(location string, status ...int) error { return nil }

func (m *mockContext) RedirectToRoute(routeName string, params router.ViewContext, status ...int) error {
	return nil
}

func (m *mockContext) RedirectBack(fallback string, status ...int) error { return nil }

func (m *mockContext) Referer() string { return "" }

func (m *mockContext) OriginalURL() string { return "" }

func (m *mockContext) FormFile(key string) (*multipart.FileHeader, error) { return nil, nil }

func (m *mockContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) IP() string { return "" }

func (m *mockContext) Status(code int) router.Context {
	m.status = code
	return m
}

func (m *mockContext) SendString(body string) error { return m.Send([]byte(body)) }

func (m *mockContext) SendStatus(code int) error {
	m.status = code
	return nil
}

func (m *mockContext) SendStream(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return m.Send(b)
}

func (m *mockContext) NoContent(code int) error {
	m.status = code
	return nil
}

func (m *mockContext) Set(key string, value any) { m.locals[key] = value }

func (m *mockContext) Get(key string, def any) any {
	if v, ok := m.locals[key]; ok {
		return v
	}
	return def
}

func (m *mockContext) GetString(key string, def string) string {
	if v, ok := m.locals[key].(string); ok {
		return v
	}
	return def
}

func (m *mockContext) GetInt(key string, def int) int {
	if v, ok := m.locals[key].(int); ok {
		return v
	}
	return def
}

func (m *mockContext) GetBool(key string, def bool) bool {
	if v, ok := m.locals[key].(bool); ok {
		return v
	}
	return def
}

func (m *mockContext) Bind(v any) error {
	if len(m.body) == 0 {
		return nil
	}
	return json.Unmarshal(m.body, v)
}

func (m *mockContext) SetContext(ctx context.Context) { m.ctx = ctx }

func (m *mockContext) Next() error { return nil }

func (m *mockContext) RouteName() string { return "" }

func (m *mockContext) RouteParams() map[string]string { return m.params }

type stubLayoutResolver struct {
	layout widgets.Layout
	err    error
}

func (s *stubLayoutResolver) ConfigureLayout(ctx context.Context, viewer widgets.ViewerContext) (widgets.Layout, error) {
	return s.layout, s.err
}

type stubRenderer struct {
	calls int
}

func (s *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	s.calls++
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("ok"))
	}
	return "ok", nil
}

type noopExecutor struct{}

func (noopExecutor) Assign(context.Context, widgets.AddWidgetRequest) error      { return nil }
func (noopExecutor) Update(context.Context, commands.UpdateWidgetInput) error    { return nil }
func (noopExecutor) Remove(context.Context, commands.RemoveWidgetInput) error    { return nil }
func (noopExecutor) Reorder(context.Context, commands.ReorderWidgetsInput) error { return nil }
func (noopExecutor) Refresh(context.Context, commands.RefreshWidgetInput) error  { return nil }
func (noopExecutor) Preferences(context.Context, commands.SaveLayoutPreferencesInput) error {
	return nil
}
func (noopExecutor) Bind(context.Context, commands.BindDataSourceInput) error     { return nil }
func (noopExecutor) SendCommand(context.Context, commands.SendCommandInput) error { return nil }
