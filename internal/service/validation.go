package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
)

// Client-side checks that block a submission before any request.

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func required(field, value, message string) error {
	if strings.TrimSpace(value) == "" {
		return &domain.ErrValidation{Field: field, Message: message}
	}
	return nil
}

func minLength(field, value string, n int, message string) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		return &domain.ErrValidation{Field: field, Message: message}
	}
	return nil
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// ValidCNPJ accepts 14 digits, with or without punctuation.
func ValidCNPJ(s string) bool {
	return len(digits(s)) == 14
}

// ValidTelefone accepts 10 or 11 digits (landline or mobile with DDD).
func ValidTelefone(s string) bool {
	n := len(digits(s))
	return n == 10 || n == 11
}

// ValidCor accepts #RRGGBB.
func ValidCor(s string) bool {
	return colorPattern.MatchString(s)
}

func optional(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	v := strings.TrimSpace(*p)
	return v, v != ""
}

// validateNome requires nome on create; on update it may be omitted but
// not blanked.
func validateNome(nome *string, creating bool) error {
	if nome == nil {
		if creating {
			return &domain.ErrValidation{Field: "nome", Message: "Nome não pode ser vazio"}
		}
		return nil
	}
	return required("nome", *nome, "Nome não pode ser vazio")
}

func validateEmpresa(in domain.EmpresaInput, creating bool) error {
	if err := validateNome(in.Nome, creating); err != nil {
		return err
	}
	if v, ok := optional(in.CNPJ); ok && !ValidCNPJ(v) {
		return &domain.ErrValidation{Field: "cnpj", Message: "CNPJ deve ter 14 dígitos"}
	}
	if v, ok := optional(in.Email); ok && !ValidEmail(v) {
		return &domain.ErrValidation{Field: "email", Message: "Email inválido"}
	}
	if v, ok := optional(in.Telefone); ok && !ValidTelefone(v) {
		return &domain.ErrValidation{Field: "telefone", Message: "Telefone deve ter 10 ou 11 dígitos"}
	}
	return nil
}

func validateContato(in domain.ContatoInput, creating bool) error {
	if creating {
		if in.EmpresaID == nil {
			return &domain.ErrValidation{Field: "empresaId", Message: "Empresa é obrigatória"}
		}
		if err := required("empresaId", *in.EmpresaID, "Empresa é obrigatória"); err != nil {
			return err
		}
	}
	if err := validateNome(in.Nome, creating); err != nil {
		return err
	}
	if v, ok := optional(in.Email); ok && !ValidEmail(v) {
		return &domain.ErrValidation{Field: "email", Message: "Email inválido"}
	}
	if v, ok := optional(in.Telefone); ok && !ValidTelefone(v) {
		return &domain.ErrValidation{Field: "telefone", Message: "Telefone deve ter 10 ou 11 dígitos"}
	}
	return nil
}

func validateCategoria(in domain.CategoriaInput, creating bool) error {
	if err := validateNome(in.Nome, creating); err != nil {
		return err
	}
	if in.Cor != nil && *in.Cor != "" && !ValidCor(*in.Cor) {
		return &domain.ErrValidation{Field: "cor", Message: "Cor deve estar no formato #RRGGBB"}
	}
	if in.Ordem != nil && *in.Ordem < 0 {
		return &domain.ErrValidation{Field: "ordem", Message: "Ordem não pode ser negativa"}
	}
	return nil
}

func validateSolucao(solucao string) error {
	return minLength("solucaoDescricao", solucao, 10, "Solução deve ter ao menos 10 caracteres")
}

func validateTicket(in domain.TicketCreateInput) error {
	checks := []error{
		required("empresaId", in.EmpresaID, "Empresa é obrigatória"),
		required("contatoId", in.ContatoID, "Contato é obrigatório"),
		required("categoriaId", in.CategoriaID, "Categoria é obrigatória"),
		minLength("titulo", in.Titulo, 5, "Título deve ter ao menos 5 caracteres"),
		minLength("descricao", in.Descricao, 10, "Descrição deve ter ao menos 10 caracteres"),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}
