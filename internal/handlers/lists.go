package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/entity"
	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/listview"
)

type column struct {
	Key       string
	Label     string
	Sortable  bool
	Direction string
	SortURL   string
}

type listRow struct {
	ID      string
	Cells   []string
	Actions []listview.Action
}

// listPage is what list.html renders.
type listPage struct {
	Title      string
	Base       string
	Columns    []column
	Rows       []listRow
	Query      string
	Sort       string
	Page       int // 1-based
	PageCount  int
	TotalItems int
	PrevURL    string
	NextURL    string
	ExportURL  string
	NewURL     string
	Loading    bool
	Error      string
	Notice     string
}

// parseQuery reads q, sort and the 1-based page from the URL. The search text
// is used as typed.
func parseQuery(r *http.Request) listview.Query {
	v := r.URL.Query()
	page, err := strconv.Atoi(v.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return listview.Query{
		Text: v.Get("q"),
		Sort: listview.ParseSort(v.Get("sort")),
		Page: page - 1,
	}
}

func queryURL(base string, q listview.Query) string {
	v := url.Values{}
	if q.Text != "" {
		v.Set("q", q.Text)
	}
	if s := listview.FormatSort(q.Sort); s != "" {
		v.Set("sort", s)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page+1))
	}
	if len(v) == 0 {
		return base
	}
	return base + "?" + v.Encode()
}

const unknownSortNotice = "The requested sort column does not exist; showing unsorted results."

// applyQuery filters and sorts, dropping an unknown sort with a notice.
func applyQuery[T any](table *listview.Table[T], items []T, q *listview.Query) ([]T, string) {
	out, err := table.Apply(items, *q)
	if errors.Is(err, listview.ErrUnknownField) {
		q.Sort = nil
		out, _ = table.Apply(items, *q)
		return out, unknownSortNotice
	}
	return out, ""
}

// buildList renders one page of a store snapshot.
func buildList[T entity.Record](title, base string, table *listview.Table[T], snap entity.Snapshot[T], q listview.Query) listPage {
	p := listPage{
		Title:   title,
		Base:    base,
		Query:   q.Text,
		Loading: snap.Loading,
	}
	if snap.Err != nil {
		p.Error = failureMessage("load "+strings.ToLower(title), snap.Err)
	}

	view, err := table.View(snap.Items, q)
	if errors.Is(err, listview.ErrUnknownField) {
		p.Notice = unknownSortNotice
		q.Sort = nil
		view, _ = table.View(snap.Items, q)
	}
	p.Sort = listview.FormatSort(q.Sort)

	for _, f := range table.Fields {
		c := column{Key: f.Key, Label: f.Label, Sortable: f.Sortable, Direction: q.SortDirection(f.Key)}
		if f.Sortable {
			c.SortURL = queryURL(base, listview.Query{Text: q.Text, Sort: q.ToggleSort(f.Key)})
		}
		p.Columns = append(p.Columns, c)
	}
	for _, row := range view.Rows {
		cells := make([]string, len(table.Fields))
		for i, f := range table.Fields {
			cells[i] = f.Display(row.Item)
		}
		p.Rows = append(p.Rows, listRow{ID: row.Item.RecordID(), Cells: cells, Actions: row.Actions})
	}

	p.Page, p.PageCount, p.TotalItems = view.Page+1, view.PageCount, view.TotalItems
	if view.HasPrev() {
		p.PrevURL = queryURL(base, listview.Query{Text: q.Text, Sort: q.Sort, Page: view.Page - 1})
	}
	if view.HasNext() {
		p.NextURL = queryURL(base, listview.Query{Text: q.Text, Sort: q.Sort, Page: view.Page + 1})
	}
	return p
}

// brandsNotice warns that brand names fell back to ids after a failed load.
func brandsNotice(p *listPage, err error) {
	if err == nil {
		return
	}
	msg := strings.TrimSuffix(failureMessage("load brands", err), ".") + ". Brands are shown by id."
	if p.Notice != "" {
		msg = p.Notice + " " + msg
	}
	p.Notice = msg
}

func editAction(base, id string) listview.Action {
	return listview.Action{Name: "edit", Label: "Edit", Method: http.MethodGet, URL: base + "/" + url.PathEscape(id) + "/edit"}
}

func toggleAction(base, id string, active bool) listview.Action {
	label := "Activate"
	if active {
		label = "Deactivate"
	}
	return listview.Action{Name: "toggle", Label: label, Method: http.MethodPost, URL: base + "/" + url.PathEscape(id) + "/toggle"}
}

func deleteAction(base, id string) listview.Action {
	return listview.Action{Name: "delete", Label: "Delete", Method: http.MethodPost, URL: base + "/" + url.PathEscape(id) + "/delete", Danger: true}
}
