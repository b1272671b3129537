package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/format"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/tui/themes"
)

type formField int

const (
	fieldDescription formField = iota
	fieldAmount
	fieldCategory
	fieldDate
	fieldCount
	fieldTotal
)

type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
)

// formError is a validation message shown inside the form.
type formError string

func (e formError) Error() string { return string(e) }

// formRequest is a validated form, ready to be sent to the ledger.
type formRequest struct {
	at          time.Time
	kind        model.Kind
	description string
	category    string
	editID      int64
	amount      float64
	count       int
}

// formModel is the add/edit form. Fields are shown depending on the kind and
// whether an expense is split into installments.
type formModel struct {
	inputs       [fieldTotal]textinput.Model
	kind         model.Kind
	err          string
	editID       int64
	focus        int
	installments bool
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	_ = ti.Cursor.SetMode(cursor.CursorStatic)
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return ti
}

func newForm(kind model.Kind) formModel {
	f := formModel{kind: kind}
	f.inputs[fieldDescription] = newInput("ex: Supermercado", 120)
	f.inputs[fieldAmount] = newInput("ex: 70,30", 20)
	f.inputs[fieldCategory] = newInput("ex: Alimentação", 60)
	f.inputs[fieldDate] = newInput("dd/mm/aaaa (vazio = hoje)", 10)
	f.inputs[fieldCount] = newInput("ex: 3", 3)
	f.setFocus(0)
	return f
}

// newAddForm starts an empty form for a new transaction.
func newAddForm(kind model.Kind) formModel {
	return newForm(kind)
}

// newEditForm starts a form prefilled with txn. Kind and date are fixed.
func newEditForm(txn model.Transaction) formModel {
	f := newForm(txn.Kind)
	f.editID = txn.ID
	f.inputs[fieldDescription].SetValue(txn.Description)
	f.inputs[fieldAmount].SetValue(format.Number(txn.Amount))
	f.inputs[fieldCategory].SetValue(txn.Category)
	return f
}

func (f formModel) editing() bool {
	return f.editID != 0
}

func (f formModel) fields() []formField {
	fields := []formField{fieldDescription, fieldAmount}
	if f.kind == model.KindExpense {
		fields = append(fields, fieldCategory)
	}
	if f.editing() {
		return fields
	}
	if f.installments {
		fields = append(fields, fieldCount)
	}
	return append(fields, fieldDate)
}

func (f formModel) focused() formField {
	return f.fields()[f.focus]
}

func (f *formModel) setFocus(i int) tea.Cmd {
	fields := f.fields()
	n := len(fields)
	f.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for _, field := range fields {
		if field == fields[f.focus] {
			cmd = f.inputs[field].Focus()
		} else {
			f.inputs[field].Blur()
		}
	}
	return cmd
}

// Update handles a key press inside the form.
func (f formModel) Update(msg tea.KeyMsg, keys KeyMap) (formModel, formAction, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		return f, formCancel, nil
	case key.Matches(msg, keys.Submit):
		return f, formSubmit, nil
	case key.Matches(msg, keys.NextField):
		return f, formNone, f.setFocus(f.focus + 1)
	case key.Matches(msg, keys.PrevField):
		return f, formNone, f.setFocus(f.focus - 1)
	case key.Matches(msg, keys.ToggleInstallments):
		if f.kind == model.KindExpense && !f.editing() {
			current := f.focused()
			f.installments = !f.installments
			f.focus = 0
			for i, field := range f.fields() {
				if field == current {
					f.focus = i
				}
			}
			return f, formNone, f.setFocus(f.focus)
		}
		return f, formNone, nil
	}

	field := f.focused()
	var cmd tea.Cmd
	f.inputs[field], cmd = f.inputs[field].Update(msg)
	f.err = ""
	return f, formNone, cmd
}

func (f formModel) value(field formField) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

// request validates the form.
func (f formModel) request(currency string) (formRequest, error) {
	req := formRequest{
		kind:        f.kind,
		editID:      f.editID,
		description: f.inputs[fieldDescription].Value(),
		count:       1,
	}
	if strings.TrimSpace(req.description) == "" {
		return req, formError("Informe a descrição.")
	}

	amount, err := cli.ParseAmount(f.value(fieldAmount), currency)
	switch {
	case errors.Is(err, cli.ErrNonPositiveAmount):
		return req, formError("O valor deve ser positivo.")
	case err != nil:
		return req, formError("Valor inválido (ex: 70,30).")
	}
	req.amount = amount

	if f.kind == model.KindExpense {
		req.category = f.value(fieldCategory)
		if req.category == "" {
			return req, formError("Despesa deve ter uma categoria.")
		}
	}
	if f.editing() {
		return req, nil
	}

	if f.installments {
		n, err := strconv.Atoi(f.value(fieldCount))
		if err != nil || n < 2 {
			return req, formError("Parcelas: informe um número maior que 1.")
		}
		req.count = n
	}

	if raw := f.value(fieldDate); raw != "" {
		at, err := cli.ParseDate(raw)
		if err != nil {
			return req, formError("Data inválida (dd/mm/aaaa).")
		}
		req.at = at
	}
	return req, nil
}

func (f formModel) title() string {
	switch {
	case f.editing():
		return fmt.Sprintf("Editar transação %d", f.editID)
	case f.kind == model.KindIncome:
		return "Novo ganho"
	case f.installments:
		return "Nova despesa parcelada"
	default:
		return "Nova despesa"
	}
}

func fieldLabel(field formField, installments bool) string {
	switch field {
	case fieldDescription:
		return "Descrição"
	case fieldAmount:
		if installments {
			return "Valor da parcela"
		}
		return "Valor"
	case fieldCategory:
		return "Categoria"
	case fieldDate:
		if installments {
			return "1º vencimento"
		}
		return "Data"
	case fieldCount:
		return "Parcelas"
	default:
		return ""
	}
}

// View renders the form.
func (f formModel) View(theme themes.Theme) string {
	lines := []string{theme.Title.Render(f.title()), ""}
	for i, field := range f.fields() {
		label := fmt.Sprintf("%-17s", fieldLabel(field, f.installments)+":")
		if i == f.focus {
			label = theme.FocusedField.Render(label)
		} else {
			label = theme.BlurredField.Render(label)
		}
		lines = append(lines, label+" "+f.inputs[field].View())
	}
	if f.kind == model.KindExpense && !f.editing() {
		toggle := "[ ] parcelado"
		if f.installments {
			toggle = "[x] parcelado"
		}
		lines = append(lines, "", theme.Subtitle.Render(toggle))
	}
	if f.err != "" {
		lines = append(lines, "", theme.StatusError.Render(f.err))
	}
	return theme.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
