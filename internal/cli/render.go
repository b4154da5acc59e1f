package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/pipeline"
	"github.com/boddenberg/helpdesk-admin-go/internal/service"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// ============================================================
// Styles
// ============================================================

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	dialogStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
	dangerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true)

	toastStyles = map[ui.ToastType]lipgloss.Style{
		ui.ToastSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("#4ADE80")),
		ui.ToastError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")),
		ui.ToastWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FACC15")),
		ui.ToastInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA")),
	}
	toastIcons = map[ui.ToastType]string{
		ui.ToastSuccess: "✓",
		ui.ToastError:   "✗",
		ui.ToastWarning: "!",
		ui.ToastInfo:    "i",
	}
)

func statusBadge(s domain.TicketStatus) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color())).Render(s.Label())
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Nenhum registro encontrado"))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func renderToast(w io.Writer, t ui.Toast) {
	style, ok := toastStyles[t.Type]
	if !ok {
		style = toastStyles[ui.ToastInfo]
	}
	icon := toastIcons[t.Type]
	if icon == "" {
		icon = toastIcons[ui.ToastInfo]
	}
	fmt.Fprintln(w, style.Render(icon+" "+t.Message))
}

func renderDialog(w io.Writer, opts ui.ConfirmOptions) {
	title := titleStyle.Render(opts.Title)
	if opts.Dangerous {
		title = dangerStyle.Render(opts.Title)
	}
	hint := mutedStyle.Render(fmt.Sprintf("[s/Enter] %s   [n/Esc] %s", opts.ConfirmText, opts.CancelText))
	fmt.Fprintln(w, dialogStyle.Render(title+"\n\n"+opts.Message+"\n\n"+hint))
}

// ============================================================
// Formatting
// ============================================================

// formatBRL formats v as Brazilian reais: R$ 1.234,56.
func formatBRL(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	inteiro := strconv.FormatInt(cents/100, 10)

	var b strings.Builder
	for i, r := range inteiro {
		if i > 0 && (len(inteiro)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	s := fmt.Sprintf("R$ %s,%02d", b.String(), cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// ============================================================
// Views
// ============================================================

func renderCounts(w io.Writer, active domain.TicketStatus, counts pipeline.Counts) {
	tabs := make([]string, 0, len(domain.TicketStatuses))
	for _, s := range domain.TicketStatuses {
		label := fmt.Sprintf("%s (%d)", s.Label(), counts.Of(s))
		if s == active {
			label = titleStyle.Underline(true).Render(label)
		} else {
			label = mutedStyle.Render(label)
		}
		tabs = append(tabs, label)
	}
	fmt.Fprintln(w, strings.Join(tabs, "  "))
}

func ticketRows(tickets []domain.Ticket, empresaNomes map[string]string) [][]string {
	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, []string{
			orDash(t.Numero),
			truncate(t.Titulo, 40),
			orDash(empresaNomes[t.EmpresaID]),
			statusBadge(t.Status),
			formatDate(t.DataAbertura),
			t.ID,
		})
	}
	return rows
}

var ticketHeaders = []string{"Nº", "Título", "Empresa", "Status", "Abertura", "ID"}

func renderDashboard(w io.Writer, v *service.DashboardView) {
	cards := []string{
		cardStyle.Render(fmt.Sprintf("Abertos\n%d", v.Stats.TicketsAbertos)),
		cardStyle.Render(fmt.Sprintf("Em andamento\n%d", v.Stats.TicketsEmAndamento)),
		cardStyle.Render(fmt.Sprintf("Fechados\n%d", v.Stats.TicketsFechados)),
		cardStyle.Render(fmt.Sprintf("Hoje\n%d", v.Stats.TicketsHoje)),
		cardStyle.Render("Faturado no mês\n" + formatBRL(v.Stats.FaturadoMes)),
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	renderCounts(w, v.Tab, v.Counts)
	renderTable(w, ticketHeaders, ticketRows(v.Recent, v.EmpresaNomes))
}

func renderTickets(w io.Writer, v *service.TicketsView) {
	renderCounts(w, v.Tab, v.Counts)
	renderTable(w, ticketHeaders, ticketRows(v.Page.Items, v.EmpresaNomes))
	if v.Page.TotalPages > 1 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Página %d de %d (%d tickets)",
			v.Page.Page, v.Page.TotalPages, v.Page.TotalItems)))
	}
}

func renderTicket(w io.Writer, d *service.TicketDetail) {
	t := d.Ticket
	empresa, contato, categoria := t.EmpresaID, t.ContatoID, t.CategoriaID
	if d.Empresa != nil {
		empresa = d.Empresa.Nome
	}
	if d.Contato != nil {
		contato = d.Contato.Nome
	}
	if d.Categoria != nil {
		categoria = d.Categoria.Nome
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("#%s %s", orDash(t.Numero), t.Titulo)))
	fields := [][2]string{
		{"Status", statusBadge(t.Status)},
		{"Empresa", orDash(empresa)},
		{"Contato", orDash(contato)},
		{"Categoria", orDash(categoria)},
		{"Abertura", formatDate(t.DataAbertura)},
		{"Fechamento", formatDatePtr(t.DataFechamento)},
	}
	if t.TempoGastoHoras > 0 {
		fields = append(fields, [2]string{"Tempo gasto", strconv.FormatFloat(t.TempoGastoHoras, 'f', -1, 64) + "h"})
	}
	for _, f := range fields {
		fmt.Fprintf(w, "%s %s\n", mutedStyle.Render(f[0]+":"), f[1])
	}
	fmt.Fprintf(w, "\n%s\n", t.Descricao)
	if t.SolucaoDescricao != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", titleStyle.Render("Solução"), t.SolucaoDescricao)
	}
}

func renderEmpresas(w io.Writer, items []domain.Empresa) {
	rows := make([][]string, 0, len(items))
	for _, e := range items {
		rows = append(rows, []string{e.Nome, orDash(e.CNPJ), orDash(e.Email), orDash(e.Telefone), e.Status, e.ID})
	}
	renderTable(w, []string{"Nome", "CNPJ", "Email", "Telefone", "Status", "ID"}, rows)
}

func renderContatos(w io.Writer, v *service.ContatosView) {
	rows := make([][]string, 0, len(v.Contatos))
	for _, c := range v.Contatos {
		principal := ""
		if c.Principal {
			principal = "★"
		}
		rows = append(rows, []string{c.Nome + principal, orDash(v.EmpresaNomes[c.EmpresaID]), orDash(c.Email), orDash(c.Telefone), orDash(c.Cargo), c.ID})
	}
	renderTable(w, []string{"Nome", "Empresa", "Email", "Telefone", "Cargo", "ID"}, rows)
}

func renderCategorias(w io.Writer, items []domain.Categoria) {
	rows := make([][]string, 0, len(items))
	for _, c := range items {
		cor := orDash(c.Cor)
		if c.Cor != "" {
			cor = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Cor)).Render("■ " + c.Cor)
		}
		rows = append(rows, []string{c.Nome, orDash(c.Descricao), cor, strconv.Itoa(c.Ordem), c.ID})
	}
	renderTable(w, []string{"Nome", "Descrição", "Cor", "Ordem", "ID"}, rows)
}

func renderResumo(w io.Writer, r domain.FaturamentoResumo) {
	cards := []string{
		cardStyle.Render(fmt.Sprintf("Registros\n%d", r.TotalRegistros)),
		cardStyle.Render("Pendente\n" + formatBRL(r.SubtotalPendente)),
		cardStyle.Render("Faturado\n" + formatBRL(r.SubtotalFaturado)),
		cardStyle.Render("Total\n" + formatBRL(r.TotalGeral)),
	}
	fmt.Fprintln(w, titleStyle.Render("Faturamento "+r.MesReferencia))
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
}

func renderFinanceiro(w io.Writer, v *service.FinanceiroView) {
	if v.Query.Status == service.StatusTodos {
		renderResumo(w, v.Resumo)
	} else {
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Faturamento %s (%s)", v.Query.MesReferencia, v.Query.Status)))
	}

	rows := make([][]string, 0, len(v.Items))
	for _, it := range v.Items {
		status := toastStyles[ui.ToastWarning].Render("Pendente")
		if it.Faturado {
			status = toastStyles[ui.ToastSuccess].Render("Faturado")
		}
		empresa := it.EmpresaNome
		if empresa == "" {
			empresa = v.EmpresaNomes[it.EmpresaID]
		}
		rows = append(rows, []string{
			orDash(it.TicketNumero),
			truncate(it.TicketTitulo, 32),
			orDash(empresa),
			formatBRL(it.Valor),
			status,
			orDash(it.NumeroNotaFiscal),
			it.ID,
		})
	}
	renderTable(w, []string{"Ticket", "Título", "Empresa", "Valor", "Status", "NF", "ID"}, rows)

	if len(v.Disponiveis) > 0 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d ticket(s) fechado(s) sem lançamento", len(v.Disponiveis))))
	}
}

func renderUsuario(w io.Writer, u *domain.Usuario, expiresAt *time.Time) {
	fmt.Fprintf(w, "%s <%s> %s\n", titleStyle.Render(u.Nome), u.Email, mutedStyle.Render(u.Role))
	if expiresAt != nil {
		fmt.Fprintln(w, mutedStyle.Render("Sessão válida até "+expiresAt.Local().Format("02/01/2006 15:04")))
	}
}
