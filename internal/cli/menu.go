package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/Veraticus/ledger/internal/balance"
	"github.com/Veraticus/ledger/internal/common"
	"github.com/Veraticus/ledger/internal/format"
	"github.com/Veraticus/ledger/internal/installment"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
)

// Ledger is the set of ledger operations the menu drives.
type Ledger interface {
	AddIncome(ctx context.Context, description string, amount float64, at time.Time) (int64, error)
	AddExpense(ctx context.Context, description, category string, amount float64, at time.Time) (int64, error)
	AddInstallments(ctx context.Context, plan installment.Plan) ([]int64, error)
	Get(ctx context.Context, id int64) (*model.Transaction, error)
	List(ctx context.Context, filter period.Filter) ([]model.Transaction, error)
	ListByKind(ctx context.Context, filter period.Filter, kind model.Kind) ([]model.Transaction, error)
	Update(ctx context.Context, id int64, update model.Update) error
	Delete(ctx context.Context, id int64) (bool, error)
	Summarize(ctx context.Context, filter period.Filter) (balance.Summary, error)
}

// Menu is the numbered console menu.
type Menu struct {
	ledger  Ledger
	reader  *LineReader
	writer  io.Writer
	now     func() time.Time
	display Display
}

type menuAction struct {
	run   func(context.Context) error
	label string
}

// NewMenu creates a menu reading answers from reader and printing to writer.
func NewMenu(ledger Ledger, reader io.Reader, writer io.Writer, display Display) *Menu {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Menu{
		ledger:  ledger,
		reader:  NewLineReader(reader),
		writer:  writer,
		display: display,
		now:     time.Now,
	}
}

// Run shows the menu until the user exits or input ends. Ledger errors are
// printed and the loop continues; only input failures end it early.
func (m *Menu) Run(ctx context.Context) error {
	actions := []menuAction{
		{label: "Adicionar Ganho", run: m.addIncome},
		{label: "Adicionar Despesa", run: m.addExpense},
		{label: "Ver Saldo", run: m.showBalance},
		{label: "Listar Todas as Transações", run: m.listAll},
		{label: "Filtrar por Tipo", run: m.filterByKind},
		{label: "Filtrar por Período", run: m.filterByPeriod},
		{label: "Editar Transação", run: m.edit},
		{label: "Excluir Transação", run: m.delete},
	}

	m.say(TitleStyle.Render(LedgerIcon + " Bem-vindo ao seu Controle Financeiro Pessoal!"))

	for {
		m.say("", FormatTitle("Controle Financeiro Pessoal"), "Escolha uma opção:")
		for i, a := range actions {
			m.say(fmt.Sprintf("%d. %s", i+1, a.label))
		}
		m.say("0. Sair")

		choice, err := m.ask(ctx, "Digite sua opção")
		if err != nil {
			return m.finish(ctx, err)
		}

		if choice == "0" {
			m.say(FormatInfo("Obrigado por usar o Controle Financeiro. Até logo!"))
			return nil
		}

		n, convErr := strconv.Atoi(choice)
		if convErr != nil || n < 1 || n > len(actions) {
			m.say(FormatError("Opção inválida. Por favor, tente novamente."))
			continue
		}

		if err := actions[n-1].run(ctx); err != nil {
			if isInputEnd(err) {
				return m.finish(ctx, err)
			}
			m.say(FormatError(Describe(err)))
		}
	}
}

func (m *Menu) finish(ctx context.Context, err error) error {
	if errors.Is(err, io.EOF) {
		m.say("", FormatInfo("Até logo!"))
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func isInputEnd(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, ErrInputCancelled) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Describe turns a ledger error into a message for the console.
func Describe(err error) string {
	var (
		validationErr *common.ValidationError
		notFoundErr   *common.NotFoundError
		periodErr     *common.InvalidPeriodError
		partialErr    *common.PartialBatchError
	)
	switch {
	case errors.As(err, &partialErr):
		return fmt.Sprintf("Apenas %d de %d parcelas foram salvas: %v", len(partialErr.Inserted), partialErr.Total, partialErr.Err)
	case errors.As(err, &validationErr) && validationErr.Constraint:
		return "Despesa deve ter uma categoria."
	case errors.As(err, &validationErr):
		return fmt.Sprintf("Dados inválidos (%s): %s", validationErr.Field, validationErr.Reason)
	case errors.As(err, &notFoundErr):
		return fmt.Sprintf("Transação com ID %d não encontrada.", notFoundErr.ID)
	case errors.As(err, &periodErr):
		return fmt.Sprintf("Período inválido: %s %q", periodErr.Field, periodErr.Token)
	default:
		return "Erro: " + err.Error()
	}
}

func (m *Menu) addIncome(ctx context.Context) error {
	m.say("", FormatTitle("Adicionar Novo(s) Ganho(s)"))
	for {
		description, err := m.askRequired(ctx, "Descrição do ganho (ex: Salário, Venda de item)", "A descrição não pode ficar vazia.")
		if err != nil {
			return err
		}
		amount, err := m.askAmount(ctx, "Valor do ganho (ex: 50.75)", nil)
		if err != nil {
			return err
		}
		at, err := m.askDate(ctx, "Data (dd/mm/aaaa, Enter para agora)")
		if err != nil {
			return err
		}

		id, err := m.ledger.AddIncome(ctx, description, amount, at)
		if err != nil {
			m.say(FormatError(Describe(err)))
		} else {
			m.say(FormatSuccess(fmt.Sprintf("Ganho '%s' no valor de %s adicionado com sucesso! (ID %d)",
				description, format.Money(m.display.Currency, amount), id)))
		}

		again, err := m.askYesNo(ctx, "Deseja adicionar outro ganho? (s/n)")
		if err != nil || !again {
			return err
		}
	}
}

func (m *Menu) addExpense(ctx context.Context) error {
	m.say("", FormatTitle("Adicionar Nova(s) Despesa(s)"))
	for {
		if err := m.addOneExpense(ctx); err != nil {
			if isInputEnd(err) {
				return err
			}
			m.say(FormatError(Describe(err)))
		}

		again, err := m.askYesNo(ctx, "Deseja adicionar outra despesa? (s/n)")
		if err != nil || !again {
			return err
		}
	}
}

func (m *Menu) addOneExpense(ctx context.Context) error {
	description, err := m.askRequired(ctx, "Descrição da despesa (ex: Aluguel, Supermercado)", "A descrição não pode ficar vazia.")
	if err != nil {
		return err
	}
	count, err := m.askCount(ctx)
	if err != nil {
		return err
	}

	amountPrompt := "Valor da despesa (ex: 70.30)"
	if count > 1 {
		amountPrompt = "Valor de cada parcela (ex: 70.30)"
	}
	amount, err := m.askAmount(ctx, amountPrompt, nil)
	if err != nil {
		return err
	}
	category, err := m.askRequired(ctx, "Categoria da despesa (ex: Moradia, Alimentação, Lazer)", "Despesa deve ter uma categoria.")
	if err != nil {
		return err
	}

	if count == 1 {
		at, err := m.askDate(ctx, "Data (dd/mm/aaaa, Enter para agora)")
		if err != nil {
			return err
		}
		id, err := m.ledger.AddExpense(ctx, description, category, amount, at)
		if err != nil {
			return err
		}
		m.say(FormatSuccess(fmt.Sprintf("Despesa '%s' (%s) no valor de %s adicionada com sucesso! (ID %d)",
			description, category, format.Money(m.display.Currency, amount), id)))
		return nil
	}

	firstDue, err := m.askDate(ctx, "Vencimento da primeira parcela (dd/mm/aaaa, Enter para hoje)")
	if err != nil {
		return err
	}
	if firstDue.IsZero() {
		firstDue = m.now()
	}

	plan := installment.Plan{
		Description: description,
		Category:    category,
		Amount:      amount,
		Count:       count,
		FirstDue:    firstDue,
	}
	ids, err := m.ledger.AddInstallments(ctx, plan)
	if err != nil {
		return err
	}
	m.say(FormatSuccess(fmt.Sprintf("%d parcelas de %s adicionadas (total %s).",
		len(ids), format.Money(m.display.Currency, amount), format.Money(m.display.Currency, plan.Total()))))
	return nil
}

func (m *Menu) showBalance(ctx context.Context) error {
	summary, err := m.ledger.Summarize(ctx, period.All)
	if err != nil {
		return err
	}
	m.say("")
	return RenderBalance(m.writer, "Saldo Atual", summary, m.display)
}

func (m *Menu) listAll(ctx context.Context) error {
	txns, err := m.ledger.List(ctx, period.All)
	if err != nil {
		return err
	}
	m.say("")
	return RenderTable(m.writer, "Lista de Todas as Transações", txns, m.display)
}

func (m *Menu) filterByKind(ctx context.Context) error {
	m.say("", FormatTitle("Filtrar Transações"), "1. Ver apenas Ganhos", "2. Ver apenas Despesas", "0. Voltar ao Menu Principal")

	var kind model.Kind
	for kind == "" {
		choice, err := m.ask(ctx, "Escolha o tipo de transação para filtrar")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			kind = model.KindIncome
		case "2":
			kind = model.KindExpense
		case "0":
			return nil
		default:
			m.say(FormatError("Opção de filtro inválida. Tente novamente."))
		}
	}

	txns, err := m.ledger.ListByKind(ctx, period.All, kind)
	if err != nil {
		return err
	}
	return RenderTable(m.writer, format.KindTitle(kind), txns, m.display)
}

func (m *Menu) filterByPeriod(ctx context.Context) error {
	m.say("", FormatTitle("Filtrar por Período"))
	year, err := m.ask(ctx, "Ano (ex: 2024, Enter para todos)")
	if err != nil {
		return err
	}
	month, err := m.ask(ctx, "Mês (1-12 ou nome, Enter para todos)")
	if err != nil {
		return err
	}

	filter, err := period.Parse(year, month)
	if err != nil {
		return err
	}

	txns, err := m.ledger.List(ctx, filter)
	if err != nil {
		return err
	}
	if err := RenderTable(m.writer, format.PeriodTitle(filter), txns, m.display); err != nil {
		return err
	}
	return RenderBalance(m.writer, "Saldo do Período", balance.Summarize(txns), m.display)
}

// pick lists every transaction and asks for an id. A nil transaction with a
// nil error means the user canceled or nothing exists.
func (m *Menu) pick(ctx context.Context, verb string) (*model.Transaction, error) {
	txns, err := m.ledger.List(ctx, period.All)
	if err != nil {
		return nil, err
	}
	if err := RenderTable(m.writer, "Lista de Todas as Transações", txns, m.display); err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, nil
	}

	id, err := m.askID(ctx, fmt.Sprintf("Digite o ID da transação que deseja %s (ou 0 para cancelar)", verb))
	if err != nil {
		return nil, err
	}
	if id == 0 {
		m.say(FormatInfo("Operação cancelada."))
		return nil, nil
	}

	txn, err := m.ledger.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m.say("")
	if err := RenderTable(m.writer, fmt.Sprintf("Detalhes da Transação ID %d", id), []model.Transaction{*txn}, m.display); err != nil {
		return nil, err
	}
	return txn, nil
}

func (m *Menu) edit(ctx context.Context) error {
	m.say("", FormatTitle("Editar Transação"))
	txn, err := m.pick(ctx, "editar")
	if err != nil || txn == nil {
		return err
	}

	m.say("", "Digite os novos valores. Pressione Enter para manter o valor atual.")
	description, err := m.ask(ctx, fmt.Sprintf("Nova descrição [%s]", txn.Description))
	if err != nil {
		return err
	}
	if description == "" {
		description = txn.Description
	}

	amount, err := m.askAmount(ctx, fmt.Sprintf("Novo valor [%s]", format.Number(txn.Amount)), &txn.Amount)
	if err != nil {
		return err
	}

	category := txn.Category
	if txn.IsExpense() {
		answer, err := m.ask(ctx, fmt.Sprintf("Nova categoria [%s]", txn.Category))
		if err != nil {
			return err
		}
		if answer != "" {
			category = answer
		}
	}

	m.say("", FormatTitle("Revisão das Alterações"),
		fmt.Sprintf("Descrição: de '%s' para '%s'", txn.Description, description),
		fmt.Sprintf("Valor: de %s para %s", format.Money(m.display.Currency, txn.Amount), format.Money(m.display.Currency, amount)))
	if txn.IsExpense() {
		m.say(fmt.Sprintf("Categoria: de '%s' para '%s'", format.Category(txn.Category), format.Category(category)))
	}

	confirm, err := m.askYesNo(ctx, "Deseja salvar estas alterações? (s/n)")
	if err != nil {
		return err
	}
	if !confirm {
		m.say(FormatInfo("Alterações descartadas."))
		return nil
	}

	if err := m.ledger.Update(ctx, txn.ID, model.Update{Description: description, Amount: amount, Category: category}); err != nil {
		return err
	}
	m.say(FormatSuccess("Transação atualizada com sucesso!"))
	return nil
}

func (m *Menu) delete(ctx context.Context) error {
	m.say("", FormatTitle("Excluir Transação"))
	txn, err := m.pick(ctx, "excluir")
	if err != nil || txn == nil {
		return err
	}

	confirm, err := m.askYesNo(ctx, "Tem certeza que deseja excluir esta transação? (s/n)")
	if err != nil {
		return err
	}
	if !confirm {
		m.say(FormatInfo("Exclusão cancelada pelo usuário."))
		return nil
	}

	deleted, err := m.ledger.Delete(ctx, txn.ID)
	if err != nil {
		return err
	}
	if !deleted {
		m.say(FormatWarning(fmt.Sprintf("Nenhuma transação encontrada com o ID %d para excluir (pode já ter sido removida).", txn.ID)))
		return nil
	}
	m.say(FormatSuccess("Transação excluída com sucesso!"))
	return nil
}

func (m *Menu) say(lines ...string) {
	for _, line := range lines {
		if _, err := fmt.Fprintln(m.writer, line); err != nil {
			slog.Warn("Failed to write menu output", "error", err)
			return
		}
	}
}

func (m *Menu) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprint(m.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	return m.reader.ReadLine(ctx)
}

func (m *Menu) askRequired(ctx context.Context, prompt, emptyMessage string) (string, error) {
	for {
		answer, err := m.ask(ctx, prompt)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		m.say(FormatError(emptyMessage))
	}
}

// askAmount re-asks until a positive amount is given. With a current value,
// an empty answer keeps it.
func (m *Menu) askAmount(ctx context.Context, prompt string, current *float64) (float64, error) {
	for {
		answer, err := m.ask(ctx, prompt)
		if err != nil {
			return 0, err
		}
		if answer == "" && current != nil {
			return *current, nil
		}

		amount, err := ParseAmount(answer, m.display.Currency)
		switch {
		case err == nil:
			return amount, nil
		case errors.Is(err, ErrNonPositiveAmount):
			m.say(FormatError("O valor deve ser positivo. Tente novamente."))
		default:
			m.say(FormatError("Valor inválido. Por favor, insira um número (ex: 50.75 ou 1200)."))
		}
	}
}

// askDate returns the zero time for an empty answer.
func (m *Menu) askDate(ctx context.Context, prompt string) (time.Time, error) {
	for {
		answer, err := m.ask(ctx, prompt)
		if err != nil {
			return time.Time{}, err
		}
		if answer == "" {
			return time.Time{}, nil
		}
		at, err := ParseDate(answer)
		if err == nil {
			return at, nil
		}
		m.say(FormatError("Data inválida. Use o formato dd/mm/aaaa."))
	}
}

func (m *Menu) askCount(ctx context.Context) (int, error) {
	for {
		answer, err := m.ask(ctx, "Número de parcelas (Enter para à vista)")
		if err != nil {
			return 0, err
		}
		if answer == "" {
			return 1, nil
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 {
			return n, nil
		}
		m.say(FormatError("Número de parcelas inválido."))
	}
}

func (m *Menu) askID(ctx context.Context, prompt string) (int64, error) {
	for {
		answer, err := m.ask(ctx, prompt)
		if err != nil {
			return 0, err
		}
		id, err := strconv.ParseInt(answer, 10, 64)
		if err == nil && id >= 0 {
			return id, nil
		}
		m.say(FormatError("ID inválido. Por favor, insira um número."))
	}
}

func (m *Menu) askYesNo(ctx context.Context, prompt string) (bool, error) {
	answer, err := m.ask(ctx, prompt)
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}
