package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/handler"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/apiclient"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/resilience"
	"github.com/boddenberg/helpdesk-admin-go/internal/service"
	"github.com/boddenberg/helpdesk-admin-go/internal/session"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"go.uber.org/zap"
)

const (
	empresaID = "0b6f3c2a-1d4e-4f5a-8b9c-0d1e2f3a4b5c"
	ticketA   = "6a1e2b3c-4d5e-4f60-8172-93a4b5c6d7e8"
	ticketB   = "7b2f3c4d-5e6f-4a71-9283-a4b5c6d7e8f9"
	linhaID   = "8c3a4d5e-6f7a-4b82-a394-b5c6d7e8f9a0"
	mes       = "2026-10"
)

// backend is a stateful stand-in for the helpdesk REST API.
type backend struct {
	mu      sync.Mutex
	tickets map[string]map[string]any
	order   []string
	items   []map[string]any
	created map[string]any
	reject  bool
}

func newBackend() *backend {
	b := &backend{tickets: map[string]map[string]any{}}
	for i, id := range []string{ticketA, ticketB} {
		b.order = append(b.order, id)
		b.tickets[id] = map[string]any{
			"id":           id,
			"numero":       fmt.Sprintf("TK-%03d", i+1),
			"empresa_id":   empresaID,
			"contato_id":   "",
			"titulo":       fmt.Sprintf("Impressora parada %d", i+1),
			"descricao":    "Impressora do financeiro não liga",
			"status":       "aberto",
			"data_criacao": fmt.Sprintf("2026-10-0%dT10:00:00", i+1),
		}
	}
	return b
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "tok",
			"token_type":   "bearer",
			"usuario":      map[string]any{"id": "u1", "email": "ana@example.com", "nome": "Ana", "role": "admin", "ativo": true},
		})
	})
	mux.HandleFunc("GET /empresas", b.auth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": empresaID, "nome": "Acme Ltda", "ativo": true}})
	}))
	mux.HandleFunc("GET /categorias", b.auth(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{})
	}))
	mux.HandleFunc("GET /tickets", b.auth(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		rows := []map[string]any{}
		for _, id := range b.order {
			rows = append(rows, b.tickets[id])
		}
		writeJSON(w, http.StatusOK, rows)
	}))
	mux.HandleFunc("PATCH /tickets/{id}/status", b.auth(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		t, ok := b.tickets[r.PathValue("id")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Ticket não encontrado"})
			return
		}
		t["status"] = r.URL.Query().Get("status")
		writeJSON(w, http.StatusOK, t)
	}))
	mux.HandleFunc("GET /faturamento", b.auth(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, append([]map[string]any{}, b.items...))
	}))
	mux.HandleFunc("GET /faturamento/resumo", b.auth(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		var pendente float64
		for _, it := range b.items {
			pendente += it["valor"].(float64)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"mes_referencia":    r.URL.Query().Get("mes_referencia"),
			"total_registros":   len(b.items),
			"subtotal_pendente": pendente,
			"subtotal_faturado": 0,
			"total_geral":       pendente,
		})
	}))
	mux.HandleFunc("POST /faturamento", b.auth(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		defer b.mu.Unlock()
		b.created = body
		t := b.tickets[body["ticket_id"].(string)]
		item := map[string]any{
			"id":             linhaID,
			"ticket_id":      body["ticket_id"],
			"empresa_id":     body["empresa_id"],
			"ticket_numero":  t["numero"],
			"ticket_titulo":  t["titulo"],
			"data_ticket":    t["data_criacao"],
			"valor":          body["valor"],
			"mes_referencia": body["mes_referencia"],
			"faturado":       false,
		}
		b.items = append(b.items, item)
		writeJSON(w, http.StatusCreated, item)
	}))
	mux.HandleFunc("GET /faturamento/export/csv", b.auth(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		var buf bytes.Buffer
		buf.WriteString("numero;titulo;valor\n")
		for _, it := range b.items {
			fmt.Fprintf(&buf, "%s;%s;%.2f\n", it["ticket_numero"], it["ticket_titulo"], it["valor"])
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="faturamento.csv"`)
		w.Write(buf.Bytes())
	}))
	return mux
}

func (b *backend) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		reject := b.reject
		b.mu.Unlock()
		if reject || r.Header.Get("Authorization") != "Bearer tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Not authenticated"})
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// console wires the real client, pages and router over the fake backend.
func console(t *testing.T, backendURL string) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	sess := session.New(nil, logger)
	confirm := ui.NewConfirm()
	toaster := ui.NewToaster(time.Minute)
	t.Cleanup(toaster.Close)

	client := apiclient.NewClient(&http.Client{Timeout: 5 * time.Second}, backendURL, sess, nil,
		resilience.Config{MaxRetries: 0, RetryDelay: 10 * time.Millisecond, MaxConcurrency: 4}, metrics, logger)

	var (
		tickets     = apiclient.NewTickets(client)
		empresas    = apiclient.NewEmpresas(client)
		categorias  = apiclient.NewCategorias(client)
		contatos    = apiclient.NewContatos(client)
		faturamento = apiclient.NewFaturamento(client)
	)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	pages := &handler.Pages{
		Session:    sess,
		Auth:       service.NewAuthPage(apiclient.NewAuth(client), sess, metrics, logger),
		Tickets:    service.NewTicketsPage(tickets, empresas, categorias, contatos, confirm, toaster, metrics, logger, 20),
		Financeiro: service.NewFinanceiroPage(faturamento, empresas, tickets, confirm, toaster, metrics, logger, now),
		Confirm:    confirm,
		Toaster:    toaster,
	}
	t.Cleanup(pages.Tickets.Close)
	t.Cleanup(pages.Financeiro.Close)

	return handler.NewRouter(pages, client, metrics, logger)
}

func call(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

type ticketsResponse struct {
	Page struct {
		Items []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"items"`
		TotalItems int `json:"totalItems"`
	} `json:"page"`
}

type financeiroResponse struct {
	Items []struct {
		ID       string  `json:"id"`
		TicketID string  `json:"ticketId"`
		Valor    float64 `json:"valor"`
	} `json:"items"`
	Resumo struct {
		TotalGeral float64 `json:"totalGeral"`
	} `json:"resumo"`
	Disponiveis []struct {
		ID string `json:"id"`
	} `json:"disponiveis"`
}

// TestIntegration_CloseAndBill logs in, closes a ticket, bills it and
// exports the month.
func TestIntegration_CloseAndBill(t *testing.T) {
	b := newBackend()
	srv := httptest.NewServer(b.handler())
	defer srv.Close()
	h := console(t, srv.URL)

	// --- Before login every page is gated ---
	if rec := call(t, h, http.MethodGet, "/v1/tickets", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 before login, got %d", rec.Code)
	}

	// --- Login ---
	rec := call(t, h, http.MethodPost, "/v1/auth/login", map[string]string{"email": "ana@example.com", "senha": "segredo"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// --- Open tab lists both tickets ---
	rec = call(t, h, http.MethodGet, "/v1/tickets?tab=aberto", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("tickets: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[ticketsResponse](t, rec).Page.TotalItems; got != 2 {
		t.Fatalf("expected 2 open tickets, got %d", got)
	}

	// --- Close ticket A ---
	rec = call(t, h, http.MethodPost, "/v1/tickets/"+ticketA+"/status", map[string]string{"status": "fechado"})
	if rec.Code != http.StatusOK {
		t.Fatalf("move: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = call(t, h, http.MethodGet, "/v1/tickets?tab=fechado", nil)
	closed := decode[ticketsResponse](t, rec)
	if closed.Page.TotalItems != 1 || closed.Page.Items[0].ID != ticketA {
		t.Fatalf("expected ticket A alone in the closed tab, got %+v", closed.Page)
	}

	// --- Closed ticket is available for billing ---
	rec = call(t, h, http.MethodGet, "/v1/financeiro?mes="+mes, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("financeiro: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	fin := decode[financeiroResponse](t, rec)
	if len(fin.Disponiveis) != 1 || fin.Disponiveis[0].ID != ticketA {
		t.Fatalf("expected ticket A available, got %+v", fin.Disponiveis)
	}

	// --- Bill it ---
	rec = call(t, h, http.MethodPost, "/v1/financeiro", map[string]any{"ticketId": ticketA, "valor": 150.5, "descricao": "Visita técnica"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	b.mu.Lock()
	created := b.created
	b.mu.Unlock()
	if created["mes_referencia"] != mes || created["empresa_id"] != empresaID {
		t.Errorf("backend received unexpected payload: %v", created)
	}

	rec = call(t, h, http.MethodGet, "/v1/financeiro", nil)
	fin = decode[financeiroResponse](t, rec)
	if len(fin.Items) != 1 || fin.Items[0].TicketID != ticketA {
		t.Fatalf("expected one billing line, got %+v", fin.Items)
	}
	if len(fin.Disponiveis) != 0 {
		t.Errorf("billed ticket should no longer be available, got %+v", fin.Disponiveis)
	}
	if fin.Resumo.TotalGeral != 150.5 {
		t.Errorf("expected total 150.5, got %v", fin.Resumo.TotalGeral)
	}

	// --- Export ---
	rec = call(t, h, http.MethodGet, "/v1/financeiro/export/csv", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "faturamento-"+mes+".csv") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "TK-001") {
		t.Errorf("export should contain the billed ticket:\n%s", rec.Body.String())
	}

	// --- Toasts ---
	rec = call(t, h, http.MethodGet, "/v1/ui/toasts", nil)
	toasts := rec.Body.String()
	for _, want := range []string{"Status atualizado", "Lançamento criado"} {
		if !strings.Contains(toasts, want) {
			t.Errorf("expected toast %q, got %s", want, toasts)
		}
	}
}

// TestIntegration_ForcedLogout checks that a backend 401 clears the
// session and the console gates again.
func TestIntegration_ForcedLogout(t *testing.T) {
	b := newBackend()
	srv := httptest.NewServer(b.handler())
	defer srv.Close()
	h := console(t, srv.URL)

	rec := call(t, h, http.MethodPost, "/v1/auth/login", map[string]string{"email": "ana@example.com", "senha": "segredo"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}

	b.mu.Lock()
	b.reject = true
	b.mu.Unlock()

	if rec := call(t, h, http.MethodGet, "/v1/tickets", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected backend 401 to surface, got %d", rec.Code)
	}

	// The session is gone: the gate answers without calling the backend.
	b.mu.Lock()
	b.reject = false
	b.mu.Unlock()
	if rec := call(t, h, http.MethodGet, "/v1/tickets", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected the console to require login again, got %d", rec.Code)
	}
}
