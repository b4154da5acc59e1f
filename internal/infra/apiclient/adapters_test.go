package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/apiclient"
)

const (
	empresaID   = "6f1c1f3e-8d2a-4c55-9b7a-0c1de4a5b001"
	contatoID   = "6f1c1f3e-8d2a-4c55-9b7a-0c1de4a5b002"
	categoriaID = "6f1c1f3e-8d2a-4c55-9b7a-0c1de4a5b003"
	ticketID    = "6f1c1f3e-8d2a-4c55-9b7a-0c1de4a5b004"
	fatID       = "6f1c1f3e-8d2a-4c55-9b7a-0c1de4a5b005"
)

func strPtr(s string) *string { return &s }

// --- Tickets ---

func TestTickets_FoldsResolvidoIntoFechado(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[
			{"id":"t1","numero":"TPT-20240501-001","titulo":"Impressora","descricao":"Não imprime nada","status":"aberto","empresa_id":"e1","contato_id":"c1","categoria_id":null,"data_criacao":"2024-05-01T10:00:00","data_atualizacao":"2024-05-01T10:00:00","data_fechamento":null,"ativo":true},
			{"id":"t2","numero":"TPT-20240501-002","titulo":"Rede caiu","descricao":"Sem internet no andar","status":"resolvido","empresa_id":"e1","contato_id":"c1","data_criacao":"2024-05-01T09:00:00","data_atualizacao":"2024-05-01T11:00:00","data_fechamento":"2024-05-01T11:00:00","ativo":true},
			{"id":"t3","numero":"TPT-20240501-003","titulo":"Backup","descricao":"Backup não rodou","status":"em_andamento","empresa_id":"e1","contato_id":"c1","data_criacao":"2024-05-01T08:00:00+00:00","data_atualizacao":"2024-05-01T08:00:00+00:00","ativo":true}
		]`)
	}), nil)

	tickets, err := apiclient.NewTickets(env.client).List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(tickets) != 3 {
		t.Fatalf("expected 3 tickets, got %d", len(tickets))
	}

	want := []domain.TicketStatus{domain.StatusAberto, domain.StatusFechado, domain.StatusEmAndamento}
	for i, tk := range tickets {
		if tk.Status != want[i] {
			t.Errorf("ticket %d: expected %s, got %s", i, want[i], tk.Status)
		}
	}
	if tickets[1].DataFechamento == nil {
		t.Error("expected dataFechamento to be mapped")
	}
	if tickets[0].DataAbertura.IsZero() {
		t.Error("expected dataAbertura from data_criacao")
	}
}

func TestTickets_ListPagesThroughBackend(t *testing.T) {
	var skips []string
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		skips = append(skips, r.URL.Query().Get("skip"))

		total := 130
		var rows []map[string]any
		for i := skip; i < total && i < skip+limit; i++ {
			rows = append(rows, map[string]any{"id": fmt.Sprintf("t%d", i), "status": "aberto", "data_criacao": "2024-05-01T10:00:00"})
		}
		if rows == nil {
			rows = []map[string]any{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rows)
	}), nil)

	tickets, err := apiclient.NewTickets(env.client).List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(tickets) != 130 {
		t.Errorf("expected 130 tickets, got %d", len(tickets))
	}
	if len(skips) != 2 || skips[0] != "0" || skips[1] != "100" {
		t.Errorf("unexpected pages requested: %v", skips)
	}
	// Backend order is preserved
	if tickets[0].ID != "t0" || tickets[129].ID != "t129" {
		t.Errorf("expected backend order, got first=%s last=%s", tickets[0].ID, tickets[129].ID)
	}
}

func TestTickets_ListByStatusFechadoMergesResolvido(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("status") {
		case "fechado":
			writeJSON(w, http.StatusOK, `[{"id":"f1","status":"fechado","data_criacao":"2024-05-03T10:00:00"},{"id":"f2","status":"fechado","data_criacao":"2024-05-01T10:00:00"}]`)
		case "resolvido":
			writeJSON(w, http.StatusOK, `[{"id":"r1","status":"resolvido","data_criacao":"2024-05-02T10:00:00"}]`)
		default:
			writeJSON(w, http.StatusBadRequest, `{"detail":"Status inválido"}`)
		}
	}), nil)

	tickets, err := apiclient.NewTickets(env.client).ListByStatus(context.Background(), domain.StatusFechado)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var ids []string
	for _, tk := range tickets {
		ids = append(ids, tk.ID)
		if tk.Status != domain.StatusFechado {
			t.Errorf("expected fechado, got %s", tk.Status)
		}
	}
	if fmt.Sprint(ids) != "[f1 r1 f2]" {
		t.Errorf("expected newest-first merge, got %v", ids)
	}
}

func TestTickets_CreateThenGetIsAberto(t *testing.T) {
	var mu sync.Mutex
	stored := map[string]map[string]any{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tickets", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		body["id"] = ticketID
		body["numero"] = "TPT-20240501-001"
		body["status"] = "aberto"
		body["data_criacao"] = "2024-05-01T10:00:00"
		body["data_atualizacao"] = "2024-05-01T10:00:00"
		mu.Lock()
		stored[ticketID] = body
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	})
	mux.HandleFunc("GET /api/tickets/{id}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		body, ok := stored[r.PathValue("id")]
		mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, `{"detail":"Ticket não encontrado"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})
	env := newTestEnv(t, mux, nil)
	tickets := apiclient.NewTickets(env.client)

	input := domain.TicketCreateInput{
		EmpresaID:   empresaID,
		ContatoID:   contatoID,
		CategoriaID: categoriaID,
		Titulo:      "Impressora parada",
		Descricao:   "A impressora do financeiro não liga",
	}
	created, err := tickets.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := tickets.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusAberto {
		t.Errorf("expected aberto, got %s", got.Status)
	}
	if got.Titulo != input.Titulo || got.Descricao != input.Descricao {
		t.Errorf("expected fields to round-trip, got %+v", got)
	}
	if got.EmpresaID != empresaID || got.ContatoID != contatoID || got.CategoriaID != categoriaID {
		t.Errorf("expected ids to round-trip, got %+v", got)
	}
}

func TestTickets_GetNotFound(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"Ticket não encontrado"}`)
	}), nil)

	_, err := apiclient.NewTickets(env.client).Get(context.Background(), ticketID)

	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if nf.ID != ticketID {
		t.Errorf("expected id %s, got %s", ticketID, nf.ID)
	}
}

func TestTickets_RejectsInvalidIDWithoutRequest(t *testing.T) {
	var served bool
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served = true
	}), nil)

	_, err := apiclient.NewTickets(env.client).Get(context.Background(), "../empresas")

	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if served {
		t.Error("expected no request for an invalid id")
	}
}

func TestTickets_UpdateOmitsUnsetFields(t *testing.T) {
	var body map[string]any
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		writeJSON(w, http.StatusOK, `{"id":"`+ticketID+`","status":"em_andamento","data_criacao":"2024-05-01T10:00:00"}`)
	}), nil)

	status := domain.StatusEmAndamento
	_, err := apiclient.NewTickets(env.client).Update(context.Background(), ticketID, domain.TicketUpdate{
		Titulo: strPtr("Novo título"),
		Status: &status,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(body) != 2 {
		t.Errorf("expected only titulo and status, got %v", body)
	}
	if body["titulo"] != "Novo título" || body["status"] != "em_andamento" {
		t.Errorf("unexpected payload %v", body)
	}
	for _, key := range []string{"descricao", "categoria_id", "contato_id"} {
		if _, ok := body[key]; ok {
			t.Errorf("expected %s to be omitted, not sent as null", key)
		}
	}
}

func TestTickets_CloseAndUpdateStatus(t *testing.T) {
	var closeBody map[string]any
	var statusQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tickets/{id}/fechar", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&closeBody)
		writeJSON(w, http.StatusOK, `{"id":"`+ticketID+`","status":"fechado","solucao_descricao":"Troca do toner","tempo_gasto_horas":1.5}`)
	})
	mux.HandleFunc("PATCH /api/tickets/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		statusQuery = r.URL.Query().Get("status")
		writeJSON(w, http.StatusOK, `{"id":"`+ticketID+`","status":"em_andamento"}`)
	})
	env := newTestEnv(t, mux, nil)
	tickets := apiclient.NewTickets(env.client)

	closed, err := tickets.Close(context.Background(), ticketID, "Troca do toner", 1.5)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != domain.StatusFechado || closed.TempoGastoHoras != 1.5 {
		t.Errorf("unexpected closed ticket %+v", closed)
	}
	if closeBody["solucao_descricao"] != "Troca do toner" || closeBody["tempo_gasto_horas"] != 1.5 {
		t.Errorf("unexpected close payload %v", closeBody)
	}

	if _, err := tickets.UpdateStatus(context.Background(), ticketID, domain.StatusEmAndamento); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if statusQuery != "em_andamento" {
		t.Errorf("expected status query, got %q", statusQuery)
	}
}

// --- Empresas / Contatos / Categorias ---

func TestEmpresas_MapsWireFields(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":"`+empresaID+`","nome":"TPT Ltda","cnpj":"12345678000190","telefone":null,"email":"contato@tpt.com","endereco":null,"contato_principal_id":"`+contatoID+`","ativo":true,"data_criacao":"2024-01-10T08:00:00"}]`)
	}), nil)

	empresas, err := apiclient.NewEmpresas(env.client).List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(empresas) != 1 {
		t.Fatalf("expected 1 empresa, got %d", len(empresas))
	}
	e := empresas[0]
	if e.Nome != "TPT Ltda" || e.CNPJ != "12345678000190" || e.ContatoPrincipalID != contatoID {
		t.Errorf("unexpected mapping %+v", e)
	}
	if e.Status != "ativo" {
		t.Errorf("expected status ativo, got %s", e.Status)
	}
	if e.Telefone != "" {
		t.Errorf("expected empty telefone, got %q", e.Telefone)
	}
}

func TestContatos_ListByEmpresaAndUpdateKeepsEmpresa(t *testing.T) {
	var listQuery string
	var updateBody map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/contatos", func(w http.ResponseWriter, r *http.Request) {
		listQuery = r.URL.Query().Get("empresa_id")
		writeJSON(w, http.StatusOK, `[{"id":"`+contatoID+`","empresa_id":"`+empresaID+`","nome":"Ana","principal":true,"ativo":true}]`)
	})
	mux.HandleFunc("PUT /api/contatos/{id}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&updateBody)
		writeJSON(w, http.StatusOK, `{"id":"`+contatoID+`","empresa_id":"`+empresaID+`","nome":"Ana Souza","ativo":true}`)
	})
	env := newTestEnv(t, mux, nil)
	contatos := apiclient.NewContatos(env.client)

	list, err := contatos.ListByEmpresa(context.Background(), empresaID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if listQuery != empresaID {
		t.Errorf("expected empresa_id filter, got %q", listQuery)
	}
	if len(list) != 1 || !list[0].Principal || list[0].EmpresaID != empresaID {
		t.Errorf("unexpected contatos %+v", list)
	}

	other := "6f1c1f3e-8d2a-4c55-9b7a-0c1de4a5b999"
	if _, err := contatos.Update(context.Background(), contatoID, domain.ContatoInput{EmpresaID: &other, Nome: strPtr("Ana Souza")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, ok := updateBody["empresa_id"]; ok {
		t.Error("expected empresa_id not to be sent on update")
	}
}

func TestCategorias_DefaultColorAndGet(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":"`+categoriaID+`","nome":"Rede","descricao":null,"cor_tag":"","icone":null,"ordem":1,"ativo":true}]`)
	}), nil)
	categorias := apiclient.NewCategorias(env.client)

	cat, err := categorias.Get(context.Background(), categoriaID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cat.Cor != apiclient.DefaultCor {
		t.Errorf("expected default color, got %q", cat.Cor)
	}

	_, err = categorias.Get(context.Background(), ticketID)
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// --- Faturamento / Dashboard / Auth ---

func TestFaturamento_DecodesMoneyStringsAndNumbers(t *testing.T) {
	var listQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/faturamento", func(w http.ResponseWriter, r *http.Request) {
		listQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, `[
			{"id":"f1","ticket_id":"t1","empresa_id":"e1","ticket_numero":"TPT-1","ticket_titulo":"A","ticket_descricao":"a","data_ticket":"2024-05-02T10:00:00","valor":"150.50","mes_referencia":"2024-05","faturado":false},
			{"id":"f2","ticket_id":"t2","empresa_id":"e1","ticket_numero":"TPT-2","ticket_titulo":"B","ticket_descricao":"b","data_ticket":"2024-05-03T10:00:00","valor":99.5,"mes_referencia":"2024-05","faturado":true,"data_faturacao":"2024-05-10T12:00:00+00:00","numero_nota_fiscal":"NF-10"}
		]`)
	})
	mux.HandleFunc("GET /api/faturamento/resumo", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"mes_referencia":"2024-05","total_registros":2,"subtotal_pendente":"150.50","subtotal_faturado":"99.50","total_geral":"250.00"}`)
	})
	env := newTestEnv(t, mux, nil)
	fat := apiclient.NewFaturamento(env.client)

	faturado := true
	items, err := fat.List(context.Background(), domain.FaturamentoFilter{MesReferencia: "2024-05", Faturado: &faturado})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].Valor != 150.50 || items[1].Valor != 99.5 {
		t.Errorf("unexpected valores %v / %v", items[0].Valor, items[1].Valor)
	}
	if items[1].DataFaturacao == nil || items[1].NumeroNotaFiscal != "NF-10" {
		t.Errorf("unexpected invoiced line %+v", items[1])
	}
	if listQuery == "" || !containsAll(listQuery, "mes_referencia=2024-05", "faturado=true") {
		t.Errorf("unexpected query %q", listQuery)
	}

	resumo, err := fat.Resumo(context.Background(), domain.FaturamentoFilter{MesReferencia: "2024-05"})
	if err != nil {
		t.Fatalf("resumo: %v", err)
	}
	if resumo.TotalGeral != 250 || resumo.SubtotalPendente != 150.5 || resumo.TotalRegistros != 2 {
		t.Errorf("unexpected resumo %+v", resumo)
	}
}

func TestFaturamento_ValidatesBeforeRequest(t *testing.T) {
	var served bool
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served = true
	}), nil)
	fat := apiclient.NewFaturamento(env.client)

	_, err := fat.Create(context.Background(), domain.FaturamentoCreateInput{
		TicketID: ticketID, EmpresaID: empresaID, Valor: 0, MesReferencia: "2024-05",
	})
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) || ve.Field != "valor" {
		t.Errorf("expected valor validation error, got %v", err)
	}

	_, err = fat.List(context.Background(), domain.FaturamentoFilter{MesReferencia: "2024-13"})
	if !errors.As(err, &ve) || ve.Field != "mesReferencia" {
		t.Errorf("expected mes_referencia validation error, got %v", err)
	}
	if served {
		t.Error("expected no request on invalid input")
	}
}

func TestFaturamento_UpdateStatusQuery(t *testing.T) {
	var query map[string][]string
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeJSON(w, http.StatusOK, `{"id":"`+fatID+`","faturado":true,"valor":"10.00","numero_nota_fiscal":"NF-1"}`)
	}), nil)

	item, err := apiclient.NewFaturamento(env.client).UpdateStatus(context.Background(), fatID, true, "NF-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if query["faturado"][0] != "true" || query["numero_nota_fiscal"][0] != "NF-1" {
		t.Errorf("unexpected query %v", query)
	}
	if !item.Faturado || item.Valor != 10 {
		t.Errorf("unexpected item %+v", item)
	}
}

func TestFaturamento_ExportCSVFallbackFilename(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("Data\n"))
	}), nil)

	_, filename, err := apiclient.NewFaturamento(env.client).ExportCSV(context.Background(), domain.FaturamentoFilter{MesReferencia: "2024-05"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if filename != "faturamento-2024-05.csv" {
		t.Errorf("unexpected filename %q", filename)
	}
}

func TestDashboard_Resumo(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"abertos":3,"em_andamento":2,"fechados":5,"tickets_hoje":1,"faturado_mes":1200.5,"faturado_ytd":"8000.00"}`)
	}), nil)

	stats, err := apiclient.NewDashboard(env.client).Resumo(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := domain.DashboardStats{TicketsAbertos: 3, TicketsEmAndamento: 2, TicketsFechados: 5, TicketsHoje: 1, FaturadoMes: 1200.5, FaturadoYTD: 8000}
	if *stats != want {
		t.Errorf("expected %+v, got %+v", want, *stats)
	}
}

func TestAuth_LoginStoresSession(t *testing.T) {
	var body map[string]string
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, `{"access_token":"jwt-1","token_type":"bearer","usuario":{"id":"u-1","email":"admin@tpt.com","nome":"Admin","role":"admin","ativo":true,"data_criacao":"2024-01-01T00:00:00"}}`)
	}), nil)

	user, err := apiclient.NewAuth(env.client).Login(context.Background(), " admin@tpt.com ", "segredo")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if body["email"] != "admin@tpt.com" || body["senha"] != "segredo" {
		t.Errorf("unexpected login payload %v", body)
	}
	if user.Role != "admin" {
		t.Errorf("expected admin role, got %s", user.Role)
	}
	if env.session.Token() != "jwt-1" || env.session.User() == nil {
		t.Error("expected token and user in session")
	}
}

func TestAuth_BadCredentialsDoNotForceLogout(t *testing.T) {
	env := newTestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Email ou senha inválidos"}`)
	}), nil)

	_, err := apiclient.NewAuth(env.client).Login(context.Background(), "admin@tpt.com", "errada")

	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if domain.UserMessage(err, "") != "Email ou senha inválidos" {
		t.Errorf("unexpected message %q", domain.UserMessage(err, ""))
	}
	if env.nav.count() != 0 {
		t.Errorf("expected no navigation on login failure, got %d", env.nav.count())
	}
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
