package components

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// ListManager is an editable list of strings with an entry, add and remove
type ListManager struct {
	list        *widget.List
	entry       *widget.Entry
	data        []string
	selectedIdx int
	validate    func(string) error
	onChange    func([]string)
	onError     func(error)
}

// ListManagerConfig configures a ListManager
type ListManagerConfig struct {
	Placeholder string
	Validate    func(string) error // rejects an item before it is added
	OnChange    func([]string)
	OnError     func(error) // shows a rejected item's error
}

// NewListManager creates the manager and the container to place in a form
func NewListManager(data []string, config ListManagerConfig) (*ListManager, *fyne.Container) {
	lm := &ListManager{
		data:        append([]string(nil), data...),
		selectedIdx: -1,
		validate:    config.Validate,
		onChange:    config.OnChange,
		onError:     config.OnError,
	}

	lm.list = widget.NewList(
		func() int {
			return len(lm.data)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("template")
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i < len(lm.data) {
				o.(*widget.Label).SetText(lm.data[i])
			}
		})
	lm.list.OnSelected = func(id widget.ListItemID) {
		lm.selectedIdx = id
	}

	lm.entry = widget.NewEntry()
	lm.entry.SetPlaceHolder(config.Placeholder)
	lm.entry.OnSubmitted = func(string) { lm.submit() }

	plusButton := widget.NewButtonWithIcon("", theme.ContentAddIcon(), lm.submit)
	minusButton := widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), lm.RemoveSelected)

	listScroll := container.NewScroll(lm.list)
	listScroll.SetMinSize(fyne.NewSize(0, 120))

	controls := container.NewBorder(nil, nil, nil,
		container.NewHBox(plusButton, minusButton),
		lm.entry)

	return lm, container.NewVBox(listScroll, controls)
}

func (lm *ListManager) submit() {
	item := strings.TrimSpace(lm.entry.Text)
	if item == "" {
		return
	}
	if err := lm.AddItem(item); err != nil {
		if lm.onError != nil {
			lm.onError(err)
		}
		return
	}
	lm.entry.SetText("")
}

// GetData returns a copy of the items
func (lm *ListManager) GetData() []string {
	return append([]string(nil), lm.data...)
}

// SetData replaces the items
func (lm *ListManager) SetData(data []string) {
	lm.data = append([]string(nil), data...)
	lm.list.UnselectAll()
	lm.selectedIdx = -1
	lm.list.Refresh()
}

// AddItem validates and appends an item. Duplicates are ignored.
func (lm *ListManager) AddItem(item string) error {
	if lm.validate != nil {
		if err := lm.validate(item); err != nil {
			return err
		}
	}
	for _, existing := range lm.data {
		if existing == item {
			return nil
		}
	}
	lm.data = append(lm.data, item)
	lm.list.Refresh()
	lm.changed()
	return nil
}

// Select marks the item at i for removal
func (lm *ListManager) Select(i int) {
	lm.list.Select(i)
}

// RemoveSelected removes the selected item
func (lm *ListManager) RemoveSelected() {
	if lm.selectedIdx < 0 || lm.selectedIdx >= len(lm.data) {
		return
	}
	lm.data = append(lm.data[:lm.selectedIdx], lm.data[lm.selectedIdx+1:]...)
	lm.list.UnselectAll()
	lm.selectedIdx = -1
	lm.list.Refresh()
	lm.changed()
}

func (lm *ListManager) changed() {
	if lm.onChange != nil {
		lm.onChange(lm.GetData())
	}
}
