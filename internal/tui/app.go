// Package tui is the terminal front end for the bookmark client.
package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/browser"
	"github.com/rivo/tview"
	"github.com/sifan077/Rinku/internal/app/model"
	"github.com/sifan077/Rinku/internal/client"
	"go.uber.org/zap"
)

const (
	formTitleAdd  = "Add bookmark"
	formTitleEdit = "Edit bookmark #%d"
	helpText      = "[::b]a[::-] add  [::b]e[::-] edit  [::b]d[::-] delete  [::b]c[::-] copy  [::b]o[::-] open  [::b]r[::-] refresh  [::b]t[::-] theme  [::b]q[::-] quit"
	loadingText   = "Loading..."
	deletingText  = "Deleting..."
	savingLabel   = "Saving..."
	saveLabel     = "Save"
)

// Field indexes in the form.
const (
	fieldTitle = iota
	fieldURL
	fieldDescription
)

type palette struct {
	background tcell.Color
	text       tcell.Color
	accent     tcell.Color
	muted      tcell.Color
	field      tcell.Color
	err        tcell.Color
}

var palettes = map[client.Theme]palette{
	client.ThemeLight: {
		background: tcell.ColorWhite,
		text:       tcell.ColorBlack,
		accent:     tcell.ColorNavy,
		muted:      tcell.ColorGray,
		field:      tcell.ColorLightGray,
		err:        tcell.ColorRed,
	},
	client.ThemeDark: {
		background: tcell.ColorBlack,
		text:       tcell.ColorWhite,
		accent:     tcell.ColorDodgerBlue,
		muted:      tcell.ColorDarkGray,
		field:      tcell.ColorDarkSlateGray,
		err:        tcell.ColorOrangeRed,
	},
}

type App struct {
	store    *client.Store
	notifier *client.Notifier
	theme    *client.ThemePreference
	logger   *zap.Logger

	app      *tview.Application
	layout   *tview.Flex
	header   *tview.TextView
	form     *tview.Form
	urlError *tview.TextView
	table    *tview.Table
	status   *tview.TextView

	// Only touched from the event loop.
	links   []model.Bookmark
	editing int64

	queue      func(func())
	background func(func())
	copyURL    func(url string) error
	openURL    func(url string) error
}

// New builds the view over backend. Nothing is fetched until Run.
func New(backend client.Backend, theme *client.ThemePreference, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	// The default browser launcher writes to the terminal the UI owns.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	a := &App{
		theme:    theme,
		logger:   logger,
		app:      tview.NewApplication(),
		header:   tview.NewTextView().SetDynamicColors(true),
		form:     tview.NewForm(),
		urlError: tview.NewTextView(),
		table:    tview.NewTable().SetSelectable(true, false).SetFixed(1, 0),
		status:   tview.NewTextView().SetDynamicColors(true),
	}
	a.queue = func(f func()) { go a.app.QueueUpdateDraw(f) }
	a.background = func(f func()) { go f() }
	a.store = client.NewStore(backend, logger, func(client.State) { a.queue(a.refresh) })
	a.notifier = client.NewNotifier(client.ToastDuration, func(string) { a.queue(a.refreshStatus) })
	a.copyURL = func(url string) error { return client.CopyURL(url, a.notifier) }
	a.openURL = client.OpenURL

	a.build()
	a.applyTheme(a.currentTheme())
	a.render(a.store.Snapshot())
	a.refreshStatus()
	return a
}

// Run loads the list in the background and blocks until the user quits.
func (a *App) Run(ctx context.Context) error {
	a.background(func() { a.store.Load(ctx) })
	return a.app.Run()
}

func (a *App) build() {
	a.form.
		AddInputField("Title", "", 60, nil, a.store.SetTitle).
		AddInputField("URL", "", 60, nil, a.store.SetURL).
		AddInputField("Description", "", 60, nil, a.store.SetDescription).
		AddButton(saveLabel, a.save).
		AddButton("Clear", a.resetForm)
	a.form.SetHorizontal(false).SetBorder(true).SetTitle(formTitleAdd)
	a.form.SetCancelFunc(func() { a.app.SetFocus(a.table) })

	a.table.SetBorder(true).SetTitle("Bookmarks")
	a.header.SetText("[::b]Rinku[::-]")

	a.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 1, 0, false).
		AddItem(a.form, 11, 0, false).
		AddItem(a.urlError, 1, 0, false).
		AddItem(a.table, 0, 1, true).
		AddItem(a.status, 1, 0, false)

	a.app.SetRoot(a.layout, true)
	a.app.SetInputCapture(a.globalInput)
}

func (a *App) currentTheme() client.Theme {
	if a.theme == nil {
		return client.ThemeLight
	}
	return a.theme.Theme()
}

func (a *App) palette() palette {
	return palettes[a.currentTheme()]
}

func (a *App) refresh() {
	a.render(a.store.Snapshot())
}

// render copies st into the widgets. Input fields are only rewritten when
// they disagree with the draft, so typing never moves the cursor.
func (a *App) render(st client.State) {
	p := a.palette()

	a.syncField(fieldTitle, st.Form.Title)
	a.syncField(fieldURL, st.Form.URL)
	a.syncField(fieldDescription, st.Form.Description)

	if st.IsSubmitting {
		a.form.GetButton(0).SetLabel(savingLabel)
	} else {
		a.form.GetButton(0).SetLabel(saveLabel)
	}
	if a.editing != 0 {
		a.form.SetTitle(fmt.Sprintf(formTitleEdit, a.editing))
	} else {
		a.form.SetTitle(formTitleAdd)
	}

	a.urlError.SetText(st.URLError)

	a.links = st.Links
	a.table.Clear()
	for col, name := range []string{"Title", "URL", "Description", ""} {
		a.table.SetCell(0, col, tview.NewTableCell(name).
			SetTextColor(p.accent).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))
	}

	if len(st.Links) == 0 {
		msg := client.EmptyStateMessage
		if st.IsLoading {
			msg = loadingText
		}
		a.table.SetCell(1, 0, tview.NewTableCell(msg).SetTextColor(p.muted).SetSelectable(false))
		return
	}

	for i, b := range st.Links {
		row := i + 1
		title := client.DisplayTitle(b)
		desc := client.DisplayDescription(b)

		titleColor, descColor := p.text, p.text
		if title == client.UntitledText {
			titleColor = p.muted
		}
		if desc == client.NoDescriptionText {
			descColor = p.muted
		}

		pending := ""
		if st.IsDeleting[b.ID] {
			pending = deletingText
		}

		a.table.SetCell(row, 0, tview.NewTableCell(title).SetTextColor(titleColor).SetExpansion(1))
		a.table.SetCell(row, 1, tview.NewTableCell(client.DisplayURL(b)).SetTextColor(p.accent).SetExpansion(2))
		a.table.SetCell(row, 2, tview.NewTableCell(desc).SetTextColor(descColor).SetExpansion(2))
		a.table.SetCell(row, 3, tview.NewTableCell(pending).SetTextColor(p.err))
	}

	if r, _ := a.table.GetSelection(); r < 1 || r > len(st.Links) {
		a.table.Select(1, 0)
	}
}

func (a *App) syncField(index int, value string) {
	field, ok := a.form.GetFormItem(index).(*tview.InputField)
	if !ok || field.GetText() == value {
		return
	}
	field.SetText(value)
}

func (a *App) refreshStatus() {
	if msg := a.notifier.Message(); msg != "" {
		a.status.SetText(msg)
		return
	}
	a.status.SetText(helpText)
}

func (a *App) applyTheme(t client.Theme) {
	p := palettes[t]

	a.layout.SetBackgroundColor(p.background)
	a.header.SetBackgroundColor(p.background)
	a.form.SetBackgroundColor(p.background)
	a.urlError.SetBackgroundColor(p.background)
	a.table.SetBackgroundColor(p.background)
	a.status.SetBackgroundColor(p.background)
	a.header.SetTextColor(p.accent)
	a.urlError.SetTextColor(p.err)
	a.status.SetTextColor(p.text)
	a.form.SetLabelColor(p.text).
		SetFieldBackgroundColor(p.field).
		SetFieldTextColor(p.text).
		SetButtonBackgroundColor(p.accent).
		SetButtonTextColor(p.background)
	a.form.SetTitleColor(p.accent).SetBorderColor(p.muted)
	a.table.SetTitleColor(p.accent).SetBorderColor(p.muted)
	a.table.SetSelectedStyle(tcell.StyleDefault.Background(p.accent).Foreground(p.background))
}

func (a *App) selected() (model.Bookmark, bool) {
	row, _ := a.table.GetSelection()
	if row < 1 || row > len(a.links) {
		return model.Bookmark{}, false
	}
	return a.links[row-1], true
}

func (a *App) globalInput(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		a.app.Stop()
		return nil
	}
	if a.app.GetFocus() != a.table {
		return event
	}
	return a.tableInput(event)
}

// tableInput handles the list shortcuts. It returns nil for consumed keys.
func (a *App) tableInput(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyEnter {
		a.openSelected()
		return nil
	}
	if event.Key() != tcell.KeyRune {
		return event
	}

	switch event.Rune() {
	case 'a':
		a.resetForm()
		a.focusForm(fieldURL)
	case 'e':
		a.editSelected()
	case 'd':
		a.deleteSelected()
	case 'c':
		a.copySelected()
	case 'o':
		a.openSelected()
	case 'r':
		a.background(func() { a.store.Refresh(context.Background()) })
	case 't':
		a.toggleTheme()
	case 'q':
		a.app.Stop()
	default:
		return event
	}
	return nil
}

func (a *App) focusForm(field int) {
	a.form.SetFocus(field)
	a.app.SetFocus(a.form)
}

func (a *App) resetForm() {
	a.editing = 0
	a.store.SetForm(client.Draft{})
	a.render(a.store.Snapshot())
}

func (a *App) save() {
	st := a.store.Snapshot()
	if st.IsSubmitting {
		return
	}

	id := a.editing
	a.background(func() {
		var sent bool
		if id != 0 {
			sent = a.store.Update(context.Background(), id)
		} else {
			sent = a.store.Submit(context.Background())
		}

		a.queue(func() {
			if !sent {
				a.focusForm(fieldURL)
				return
			}
			if a.store.Snapshot().Form == (client.Draft{}) {
				a.editing = 0
				a.app.SetFocus(a.table)
			}
			a.refresh()
		})
	})
}

func (a *App) editSelected() {
	b, ok := a.selected()
	if !ok {
		return
	}
	a.editing = b.ID
	a.store.SetForm(client.DraftOf(b))
	a.render(a.store.Snapshot())
	a.focusForm(fieldTitle)
}

func (a *App) deleteSelected() {
	b, ok := a.selected()
	if !ok {
		return
	}
	if a.store.Snapshot().IsDeleting[b.ID] {
		return
	}
	a.background(func() { a.store.Delete(context.Background(), b.ID) })
}

func (a *App) copySelected() {
	b, ok := a.selected()
	if !ok {
		return
	}
	if err := a.copyURL(client.DisplayURL(b)); err != nil {
		a.logger.Error("failed to copy url", zap.Int64("id", b.ID), zap.Error(err))
	}
}

func (a *App) openSelected() {
	b, ok := a.selected()
	if !ok || client.DisplayURL(b) == "" {
		return
	}
	if err := a.openURL(client.DisplayURL(b)); err != nil {
		a.logger.Error("failed to open url", zap.Int64("id", b.ID), zap.Error(err))
	}
}

func (a *App) toggleTheme() {
	if a.theme == nil {
		return
	}
	t, err := a.theme.Toggle()
	if err != nil {
		a.logger.Error("failed to save theme", zap.Error(err))
	}
	a.applyTheme(t)
	a.render(a.store.Snapshot())
}
