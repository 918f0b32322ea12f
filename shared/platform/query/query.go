package query

const (
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage acota Page para que Offset no desborde.
	MaxPage = 1_000_000
)

// PageRequest es la paginación por número de página (1-based) que usa la API.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize aplica los valores por defecto y el tope de Limit.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset traduce la página a un offset SQL. Asume una PageRequest normalizada.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page es el resultado paginado genérico.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPage arma el resultado calculando el total de páginas.
func NewPage[T any](items []T, total int, req PageRequest) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Limit > 0 {
		pages = (total + req.Limit - 1) / req.Limit
	}
	return &Page[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: pages,
	}
}
