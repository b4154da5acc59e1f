package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
	"github.com/boddenberg/helpdesk-admin-go/internal/service"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"go.uber.org/zap"
)

func newFinanceiroPage(t *testing.T, fat *mockFaturamento) (*service.FinanceiroPage, *ui.Toaster) {
	t.Helper()
	toaster := ui.NewToaster(time.Minute)
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	page := service.NewFinanceiroPage(fat, &mockEmpresas{list: threeEmpresas()}, &mockTickets{list: sevenTickets()},
		&mockConfirm{answer: true}, toaster, observability.NewMetrics(), zap.NewNop(), now)
	t.Cleanup(func() {
		page.Close()
		toaster.Close()
	})
	return page, toaster
}

func billedT4() []domain.FaturamentoItem {
	return []domain.FaturamentoItem{
		{ID: "f1", TicketID: "t4", EmpresaID: "e2", Valor: 250, MesReferencia: "2025-03", NumeroNotaFiscal: "NF-10"},
	}
}

func TestFinanceiroPage_LoadDerivesDisponiveis(t *testing.T) {
	fat := &mockFaturamento{
		items:  billedT4(),
		resumo: domain.FaturamentoResumo{MesReferencia: "2025-03", TotalRegistros: 1, SubtotalPendente: 250, TotalGeral: 250},
	}
	page, _ := newFinanceiroPage(t, fat)

	view, err := page.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if view.Query.MesReferencia != "2025-03" {
		t.Errorf("MesReferencia = %q", view.Query.MesReferencia)
	}
	if !sameIDs(view.Disponiveis, "t7") {
		t.Errorf("Disponiveis = %v, want [t7]", ids(view.Disponiveis))
	}
	if view.Resumo.TotalGeral != 250 {
		t.Errorf("TotalGeral = %v", view.Resumo.TotalGeral)
	}
}

func TestFinanceiroPage_StatusFilterSkipsResumo(t *testing.T) {
	fat := &mockFaturamento{}
	page, _ := newFinanceiroPage(t, fat)

	_, err := page.SetQuery(context.Background(), service.FinanceiroQuery{Status: service.StatusPendente, EmpresaID: " e2 "})
	if err != nil {
		t.Fatalf("SetQuery: %v", err)
	}

	var list domain.FaturamentoFilter
	for _, f := range fat.filters {
		if f.Faturado != nil {
			list = f
		}
	}
	if list.Faturado == nil || *list.Faturado {
		t.Errorf("list filter Faturado = %v, want false", list.Faturado)
	}
	if list.EmpresaID != "e2" || list.MesReferencia != "2025-03" {
		t.Errorf("list filter = %+v", list)
	}
	resumo := fat.resumoCalls[len(fat.resumoCalls)-1]
	if resumo.Faturado != nil {
		t.Error("resumo must ignore the status filter")
	}
}

func TestFinanceiroPage_DisponiveisIgnoreStatusFilter(t *testing.T) {
	fat := &mockFaturamento{items: []domain.FaturamentoItem{
		{ID: "f1", TicketID: "t4", EmpresaID: "e2", Valor: 250, MesReferencia: "2025-03"},
		{ID: "f2", TicketID: "t7", EmpresaID: "e3", Valor: 90, MesReferencia: "2025-03", Faturado: true, NumeroNotaFiscal: "NF-11"},
	}}
	page, _ := newFinanceiroPage(t, fat)
	ctx := context.Background()

	tests := []struct {
		status    service.StatusFilter
		wantItems []string
	}{
		{service.StatusTodos, []string{"f1", "f2"}},
		{service.StatusPendente, []string{"f1"}},
		{service.StatusFaturado, []string{"f2"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			view, err := page.SetQuery(ctx, service.FinanceiroQuery{Status: tt.status})
			if err != nil {
				t.Fatalf("SetQuery: %v", err)
			}
			if len(view.Items) != len(tt.wantItems) {
				t.Fatalf("Items = %d, want %d", len(view.Items), len(tt.wantItems))
			}
			for i, id := range tt.wantItems {
				if view.Items[i].ID != id {
					t.Errorf("Items[%d] = %q, want %q", i, view.Items[i].ID, id)
				}
			}
			if len(view.Disponiveis) != 0 {
				t.Errorf("Disponiveis = %v, want none", ids(view.Disponiveis))
			}
		})
	}

	// The view is still filtered on faturado here.
	if _, err := page.Create(ctx, "t4", 100, ""); err == nil {
		t.Error("ticket with a pending line accepted")
	}
	if len(fat.created) != 0 {
		t.Error("create reached the backend")
	}
}

func TestFinanceiroPage_SetQueryRejectsBadInput(t *testing.T) {
	page, _ := newFinanceiroPage(t, &mockFaturamento{})
	ctx := context.Background()

	for _, q := range []service.FinanceiroQuery{
		{MesReferencia: "2025-13"},
		{MesReferencia: "03/2025"},
		{MesReferencia: "2025-03", Status: "talvez"},
	} {
		_, err := page.SetQuery(ctx, q)
		var ve *domain.ErrValidation
		if !errors.As(err, &ve) {
			t.Errorf("SetQuery(%+v) err = %v, want ErrValidation", q, err)
		}
	}
	if page.Query().MesReferencia != "2025-03" {
		t.Errorf("rejected query was applied: %+v", page.Query())
	}
}

func TestFinanceiroPage_CreateRequiresAvailableTicket(t *testing.T) {
	fat := &mockFaturamento{items: billedT4()}
	page, toaster := newFinanceiroPage(t, fat)
	ctx := context.Background()
	if _, err := page.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := page.Create(ctx, "t4", 100, ""); err == nil {
		t.Error("already billed ticket accepted")
	}
	if _, err := page.Create(ctx, "t1", 100, ""); err == nil {
		t.Error("open ticket accepted")
	}
	if _, err := page.Create(ctx, "t7", 0, ""); err == nil {
		t.Error("zero valor accepted")
	}
	if len(fat.created) != 0 {
		t.Fatalf("invalid create reached the backend")
	}

	if _, err := page.Create(ctx, "t7", 180.5, " Visita técnica "); err != nil {
		t.Fatalf("Create: %v", err)
	}
	in := fat.created[0]
	if in.EmpresaID != "e3" || in.MesReferencia != "2025-03" || in.Descricao != "Visita técnica" {
		t.Errorf("create input = %+v", in)
	}
	if toast := lastToast(t, toaster); toast.Message != "Lançamento criado" {
		t.Errorf("toast = %q", toast.Message)
	}
}

func TestFinanceiroPage_ToggleKeepsNotaFiscal(t *testing.T) {
	fat := &mockFaturamento{items: billedT4()}
	page, _ := newFinanceiroPage(t, fat)
	ctx := context.Background()
	if _, err := page.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := page.ToggleFaturado(ctx, "f1", ""); err != nil {
		t.Fatalf("ToggleFaturado: %v", err)
	}
	if _, err := page.ToggleFaturado(ctx, "f1", "NF-22"); err != nil {
		t.Fatalf("ToggleFaturado: %v", err)
	}

	want := []statusCall{{"f1", true, "NF-10"}, {"f1", true, "NF-22"}}
	if len(fat.statusCalls) != len(want) {
		t.Fatalf("status calls = %+v", fat.statusCalls)
	}
	for i := range want {
		if fat.statusCalls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, fat.statusCalls[i], want[i])
		}
	}

	var nf *domain.ErrNotFound
	if _, err := page.ToggleFaturado(ctx, "missing", ""); !errors.As(err, &nf) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFinanceiroPage_ExportFilenames(t *testing.T) {
	fat := &mockFaturamento{
		csv:    []byte("id,valor\nf1,250\n"),
		export: &domain.FaturamentoExport{MesReferencia: "2025-03", Total: 1, Items: billedT4()},
	}
	page, _ := newFinanceiroPage(t, fat)
	ctx := context.Background()

	csvExp, err := page.ExportCSV(ctx)
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if csvExp.Filename != "faturamento-2025-03.csv" || csvExp.ContentType != "text/csv" {
		t.Errorf("csv export = %s %s", csvExp.Filename, csvExp.ContentType)
	}

	jsonExp, err := page.ExportJSON(ctx)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if jsonExp.Filename != "faturamento-2025-03.json" {
		t.Errorf("json filename = %s", jsonExp.Filename)
	}
	if !strings.Contains(string(jsonExp.Data), "\n  \"mesReferencia\": \"2025-03\"") {
		t.Errorf("json not indented: %s", jsonExp.Data)
	}
}

func TestTicketsDisponiveis_PreservesOrder(t *testing.T) {
	got := service.TicketsDisponiveis(sevenTickets(), nil)
	if !sameIDs(got, "t4", "t7") {
		t.Errorf("got %v, want [t4 t7]", ids(got))
	}
	if got := service.TicketsDisponiveis(nil, nil); got == nil || len(got) != 0 {
		t.Errorf("empty input = %#v, want empty slice", got)
	}
}

func TestParseStatusFilter(t *testing.T) {
	tests := map[string]service.StatusFilter{
		"":          service.StatusTodos,
		"todos":     service.StatusTodos,
		" Faturado": service.StatusFaturado,
		"pendente":  service.StatusPendente,
	}
	for in, want := range tests {
		got, err := service.ParseStatusFilter(in)
		if err != nil || got != want {
			t.Errorf("ParseStatusFilter(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := service.ParseStatusFilter("pago"); err == nil {
		t.Error("unknown filter accepted")
	}
}
