package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// MesLayout is the layout of a billing reference month.
const MesLayout = "2006-01"

var mesReferenciaPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ValidMesReferencia reports whether mes is a YYYY-MM reference month.
func ValidMesReferencia(mes string) bool {
	if !mesReferenciaPattern.MatchString(mes) {
		return false
	}
	month, _ := strconv.Atoi(mes[5:])
	return month >= 1 && month <= 12
}

// MesDe returns the reference month containing t.
func MesDe(t time.Time) string {
	return t.Format(MesLayout)
}

// ExportFilename names an export file for a reference month.
func ExportFilename(mes, ext string) string {
	if mes == "" {
		return fmt.Sprintf("faturamento.%s", ext)
	}
	return fmt.Sprintf("faturamento-%s.%s", mes, ext)
}
