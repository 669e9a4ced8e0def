package crud

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

// memRepo is an in-memory Repository
type memRepo struct {
	rows    map[int]Record
	nextID  int
	deleted []string
}

func newMemRepo(rows ...Record) *memRepo {
	repo := &memRepo{rows: make(map[int]Record), nextID: 1}
	for _, row := range rows {
		repo.rows[repo.nextID] = row
		row["id"] = repo.nextID
		repo.nextID++
	}
	return repo
}

func (m *memRepo) All(ctx context.Context) ([]Record, error) {
	ids := make([]int, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.rows[id])
	}
	return out, nil
}

func (m *memRepo) Get(ctx context.Context, pk string) (Record, error) {
	id, err := strconv.Atoi(pk)
	if err != nil {
		return nil, ErrNotFound
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return row, nil
}

func (m *memRepo) Insert(ctx context.Context, data Record) (Record, error) {
	row := Record{"id": m.nextID}
	for k, v := range data {
		row[k] = v
	}
	m.rows[m.nextID] = row
	m.nextID++
	return row, nil
}

func (m *memRepo) Update(ctx context.Context, pk string, data Record) (Record, error) {
	row, err := m.Get(ctx, pk)
	if err != nil {
		return nil, err
	}
	for k, v := range data {
		row[k] = v
	}
	return row, nil
}

func (m *memRepo) Delete(ctx context.Context, pk string) error {
	if _, err := m.Get(ctx, pk); err != nil {
		return err
	}
	id, _ := strconv.Atoi(pk)
	delete(m.rows, id)
	m.deleted = append(m.deleted, pk)
	return nil
}

func (m *memRepo) PKColumn() string { return "id" }

// fakeRenderer records the template name and context of the last render
type fakeRenderer struct {
	names    map[string]bool
	lastName string
	lastData interface{}
}

func newFakeRenderer(names ...string) *fakeRenderer {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return &fakeRenderer{names: set}
}

func (f *fakeRenderer) Has(name string) bool {
	return f.names[name]
}

func (f *fakeRenderer) HTML(w http.ResponseWriter, statusCode int, name string, data interface{}) error {
	f.lastName = name
	f.lastData = data
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, "rendered %s", name)
	return nil
}

// scriptedForm saves bound data through the repo, reporting validity per
// its script
type scriptedForm struct {
	repo     Repository
	validOK  bool
	bound    bool
	values   Record
	instance Record
	saved    int
}

func (f *scriptedForm) Bind(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	f.values = Record{}
	for key := range r.PostForm {
		f.values[key] = r.PostFormValue(key)
	}
	f.bound = true
	return nil
}

func (f *scriptedForm) Valid() bool { return f.bound && f.validOK }

func (f *scriptedForm) Errors() map[string][]string {
	if f.Valid() {
		return nil
	}
	return map[string][]string{"first_name": {"required"}}
}

func (f *scriptedForm) SetInstance(obj Record) { f.instance = obj }
func (f *scriptedForm) Instance() Record       { return f.instance }

func (f *scriptedForm) Save(ctx context.Context) (Record, error) {
	f.saved++
	if f.instance != nil {
		pk := fmt.Sprintf("%v", f.instance["id"])
		return f.repo.Update(ctx, pk, f.values)
	}
	return f.repo.Insert(ctx, f.values)
}

func widgetView(t *testing.T, repo Repository, form *scriptedForm, mutate func(*Definition)) (*View, *fakeRenderer) {
	t.Helper()

	renderer := newFakeRenderer(
		"widget/widget_list.html",
		"widget/widget_detail.html",
		"widget/widget_create.html",
		"widget/widget_update.html",
	)

	def := &Definition{
		Name:           "widget",
		Form:           func() Form { return form },
		TemplateFolder: "widget",
		RedirectTo:     "/widgets/",
	}
	if mutate != nil {
		mutate(def)
	}

	view, err := NewView(def, repo, renderer)
	if err != nil {
		t.Fatalf("NewView() error = %v", err)
	}
	return view, renderer
}

// request builds a request with the pk route parameter chi would extract
func request(method, path string, pk string, form url.Values) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rctx := chi.NewRouteContext()
	if pk != "" {
		rctx.URLParams.Add("pk", pk)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestView_List(t *testing.T) {
	repo := newMemRepo(Record{"name": "a"}, Record{"name": "b"})
	view, renderer := widgetView(t, repo, nil, nil)

	w := httptest.NewRecorder()
	view.ServeHTTP(w, request("GET", "/widgets/", "", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if renderer.lastName != "widget/widget_list.html" {
		t.Errorf("template = %q", renderer.lastName)
	}

	data := renderer.lastData.(Context)
	objects, ok := data["widgets"].([]Record)
	if !ok {
		t.Fatalf("context[widgets] = %T, want []Record", data["widgets"])
	}
	if len(objects) != 2 {
		t.Errorf("len(objects) = %d, want 2", len(objects))
	}
}

func TestView_List_Paginated(t *testing.T) {
	var rows []Record
	for i := 0; i < 7; i++ {
		rows = append(rows, Record{"name": fmt.Sprintf("w%d", i)})
	}
	repo := newMemRepo(rows...)

	view, renderer := widgetView(t, repo, nil, func(d *Definition) {
		d.PaginateBy = 3
	})

	w := httptest.NewRecorder()
	view.ServeHTTP(w, request("GET", "/widgets/?page=2", "", nil))

	page, ok := renderer.lastData.(Context)["widgets"].(Page)
	if !ok {
		t.Fatalf("context[widgets] = %T, want Page", renderer.lastData.(Context)["widgets"])
	}
	if page.Number != 2 {
		t.Errorf("page.Number = %d, want 2", page.Number)
	}
	if len(page.Objects) != 3 {
		t.Errorf("len(page.Objects) = %d, want 3", len(page.Objects))
	}
	if page.TotalPages != 3 {
		t.Errorf("page.TotalPages = %d, want 3", page.TotalPages)
	}
}

func TestView_Detail(t *testing.T) {
	repo := newMemRepo(Record{"name": "a"})
	view, renderer := widgetView(t, repo, nil, nil)

	w := httptest.NewRecorder()
	view.ServeHTTP(w, request("GET", "/widgets/1/", "1", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if renderer.lastName != "widget/widget_detail.html" {
		t.Errorf("template = %q", renderer.lastName)
	}

	obj := renderer.lastData.(Context)["widget"].(Record)
	if obj["name"] != "a" {
		t.Errorf("context[widget] = %v", obj)
	}
}

func TestView_Detail_NotFound(t *testing.T) {
	view, _ := widgetView(t, newMemRepo(), nil, nil)

	w := httptest.NewRecorder()
	view.ServeHTTP(w, request("GET", "/widgets/99/", "99", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestView_Create_ValidPost(t *testing.T) {
	repo := newMemRepo()
	form := &scriptedForm{repo: repo, validOK: true}
	view, _ := widgetView(t, repo, form, nil)

	w := httptest.NewRecorder()
	view.ServeHTTP(w, request("POST", "/widgets/create/", "", url.Values{"name": {"new"}}))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if got := w.Header().Get("Location"); got != "/widgets/" {
		t.Errorf("Location = %q, want /widgets/", got)
	}
	if form.saved != 1 {
		t.Errorf("form saved %d times, want 1", form.saved)
	}
	if len(repo.rows) != 1 {
		t.Errorf("repo rows = %d, want 1", len(repo.rows))
	}
}

func TestView_Create_InvalidPost(t *testing.T) {
	repo := newMemRepo()
	form := &scriptedForm{repo: repo, validOK: false}
	view, renderer := widgetView(t, repo, form, nil)

	w := httptest.NewRecorder()
	view.ServeHTTP(w, request("POST", "/widgets/create/", "", url.Values{"name": {""}}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render", w.Code)
	}
	if renderer.lastName != "widget/widget_create.html" {
		t.Errorf("template = %q", renderer.lastName)
	}
	if form.saved != 0 {
		t.Errorf("form saved %d times, want 0", form.saved)
	}

	bound, ok := renderer.lastData.(Context)["form"].(*scriptedForm)
	if !ok || !bound.bound {
		t.Error("re-rendered context must carry the bound form")
	}
}

func TestView_Create_Get(t *testing.T) {
	repo := newMemRepo()
	form := &scriptedForm{repo: repo, validOK: true}
	view, renderer := widgetView(t, repo, form, nil)

	w := httptest.NewRecorder()
	view.ServeHTTP(w, request("GET", "/widgets/create/", "", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if renderer.lastName != "widget/widget_create.html" {
		t.Errorf("template = %q", renderer.lastName)
	}
	if form.bound {
		t.Error("GET must render an unbound form")
	}
}

func TestView_Update_ValidPost(t *testing.T) {
	repo := newMemRepo(Record{"name": "old"})
	form := &scriptedForm{repo: repo, validOK: true}
	view, _ := widgetView(t, repo, form, nil)

	w := httptest.NewRecorder()
	view.ServeHTTP(w, request("POST", "/widgets/1/update/", "1", url.Values{"name": {"new"}}))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if repo.rows[1]["name"] != "new" {
		t.Errorf("row name = %v, want new", repo.rows[1]["name"])
	}
	if form.instance == nil {
		t.Error("update form must carry the fetched instance")
	}
}

func TestView_Update_InvalidPost(t *testing.T) {
	repo := newMemRepo(Record{"name": "old"})
	form := &scriptedForm{repo: repo, validOK: false}
	view, renderer := widgetView(t, repo, form, nil)

	w := httptest.NewRecorder()
	view.ServeHTTP(w, request("POST", "/widgets/1/update/", "1", url.Values{"name": {""}}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 re-render", w.Code)
	}
	if renderer.lastName != "widget/widget_update.html" {
		t.Errorf("template = %q", renderer.lastName)
	}
	if repo.rows[1]["name"] != "old" {
		t.Errorf("row name = %v, want old (no persistence)", repo.rows[1]["name"])
	}

	data := renderer.lastData.(Context)
	if _, ok := data["form"]; !ok {
		t.Error("context missing the bound form")
	}
	if obj, ok := data["widget"].(Record); !ok || obj["name"] != "old" {
		t.Error("context missing the object under the singular name")
	}
}

func TestView_Update_NotFound(t *testing.T) {
	form := &scriptedForm{repo: newMemRepo(), validOK: true}
	view, _ := widgetView(t, newMemRepo(), form, nil)

	w := httptest.NewRecorder()
	view.ServeHTTP(w, request("POST", "/widgets/9/update/", "9", url.Values{"name": {"x"}}))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestView_Delete(t *testing.T) {
	repo := newMemRepo(Record{"name": "a"})
	view, _ := widgetView(t, repo, nil, nil)

	w := httptest.NewRecorder()
	view.ServeHTTP(w, request("POST", "/widgets/1/delete/", "1", nil))

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if len(repo.rows) != 0 {
		t.Errorf("repo rows = %d, want 0", len(repo.rows))
	}
}

func TestView_Delete_NotFound(t *testing.T) {
	view, _ := widgetView(t, newMemRepo(), nil, nil)

	w := httptest.NewRecorder()
	view.ServeHTTP(w, request("POST", "/widgets/5/delete/", "5", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestView_NotPermitted(t *testing.T) {
	repo := newMemRepo(Record{"name": "a"})
	view, _ := widgetView(t, repo, nil, func(d *Definition) {
		d.Allowed = []Operation{OpList, OpDetail}
		d.Form = nil
		d.RedirectTo = ""
	})

	w := httptest.NewRecorder()
	view.ServeHTTP(w, request("POST", "/widgets/1/delete/", "1", nil))

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if len(repo.rows) != 1 {
		t.Error("excluded delete must not remove the row")
	}
}

func TestView_MethodNotAllowed(t *testing.T) {
	view, _ := widgetView(t, newMemRepo(Record{"name": "a"}), nil, nil)

	w := httptest.NewRecorder()
	view.ServeHTTP(w, request("PUT", "/widgets/1/", "1", nil))

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestView_TemplateResolution(t *testing.T) {
	view, _ := widgetView(t, newMemRepo(), nil, func(d *Definition) {
		d.Templates = map[Operation]string{OpList: "custom/widgets.html"}
	})

	name, err := view.TemplateName(OpDetail)
	if err != nil {
		t.Fatalf("TemplateName(detail) error = %v", err)
	}
	if name != "widget/widget_detail.html" {
		t.Errorf("TemplateName(detail) = %q", name)
	}

	// The override is resolved but missing from the renderer's set
	if _, err := view.TemplateName(OpList); err == nil {
		t.Error("TemplateName(list) = nil error for a template the renderer does not have")
	}
}

func TestView_TemplateMisconfigured(t *testing.T) {
	view, _ := widgetView(t, newMemRepo(), nil, func(d *Definition) {
		d.Templates = map[Operation]string{OpList: "widget/widget_list.html"}
		d.TemplateFolder = ""
	})

	if _, err := view.TemplateName(OpDetail); !IsImproperlyConfigured(err) {
		t.Errorf("TemplateName(detail) error = %v, want ErrImproperlyConfigured", err)
	}
}

func TestNewView_ValidatesEagerly(t *testing.T) {
	def := &Definition{} // missing everything
	if _, err := NewView(def, newMemRepo(), newFakeRenderer()); !IsImproperlyConfigured(err) {
		t.Errorf("NewView() error = %v, want ErrImproperlyConfigured", err)
	}

	if _, err := NewView(validDefinition(), nil, newFakeRenderer()); !IsImproperlyConfigured(err) {
		t.Errorf("NewView() without repo: error = %v, want ErrImproperlyConfigured", err)
	}
}
