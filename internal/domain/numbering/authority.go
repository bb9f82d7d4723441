// Package numbering implementa la autoridad de numeración de facturas:
// un contador monótono por serie, con asignación atómica y sin huecos en
// operación normal.
//
// Compromiso documentado: si el caller obtiene un número y la transacción
// de emisión que lo envuelve aborta antes de persistir la factura, queda un
// hueco en la serie. Se acepta; no existe devolución de números porque la
// reutilización abriría carreras de duplicado.
package numbering

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tu-usuario/factura-lv/internal/domain"
)

// CounterStore persiste el último valor asignado de cada serie.
// La escritura ocurre antes de liberar el candado del contador.
type CounterStore interface {
	// Load devuelve el último valor asignado (0 si la serie no existe aún).
	Load(ctx context.Context, series string) (int64, error)
	// Save guarda el último valor asignado de la serie.
	Save(ctx context.Context, series string, last int64) error
}

// Config opciones de la autoridad.
type Config struct {
	Start    int64             // primer número de cada serie (por defecto 1)
	Prefixes map[string]string // prefijo de visualización por serie; por defecto la propia serie
	// PrefixFor resuelve el prefijo de visualización en el momento de
	// formatear (p. ej. desde ajustes editables). Tiene prioridad sobre
	// Prefixes; una cadena vacía cae al comportamiento por defecto.
	PrefixFor    func(series string) string
	LockAttempts int           // presupuesto de reintentos de TryLock (por defecto 50)
	LockBackoff  time.Duration // espera entre reintentos (por defecto 2ms)
}

// Authority asigna números secuenciales "<prefijo>-NNNNNN" por serie.
// Series distintas no se coordinan entre sí.
type Authority struct {
	store CounterStore
	cfg   Config

	mu     sync.Mutex // protege el mapa de series
	series map[string]*seriesCounter
}

type seriesCounter struct {
	mu     sync.Mutex
	last   int64
	loaded bool
}

// NewAuthority construye la autoridad sobre el almacén de contadores dado.
func NewAuthority(store CounterStore, cfg Config) *Authority {
	if cfg.Start <= 0 {
		cfg.Start = 1
	}
	if cfg.LockAttempts <= 0 {
		cfg.LockAttempts = 50
	}
	if cfg.LockBackoff <= 0 {
		cfg.LockBackoff = 2 * time.Millisecond
	}
	return &Authority{store: store, cfg: cfg, series: make(map[string]*seriesCounter)}
}

// NextNumber asigna y consume el siguiente número de la serie de forma
// atómica: el contador se persiste vía CounterStore antes de liberar el
// candado. Devuelve ConcurrencyError si agota el presupuesto de reintentos
// sin obtener acceso exclusivo; en ese caso el caller debe reintentar la
// emisión completa de la factura, no solo esta llamada.
func (a *Authority) NextNumber(ctx context.Context, series string) (string, error) {
	if series == "" {
		return "", domain.NewValidationError("series", "no puede estar vacía")
	}
	sc := a.counter(series)

	if !a.tryAcquire(sc) {
		return "", domain.NewConcurrencyError(series)
	}
	defer sc.mu.Unlock()

	if err := a.ensureLoaded(ctx, series, sc); err != nil {
		return "", err
	}

	next := sc.last + 1
	if err := a.store.Save(ctx, series, next); err != nil {
		return "", fmt.Errorf("persistir contador de la serie %q: %w", series, err)
	}
	sc.last = next
	return a.Format(series, next), nil
}

// PeekNextNumber devuelve el número que produciría la próxima llamada a
// NextNumber, sin mutar estado. El valor puede quedar obsoleto en cuanto
// otro caller emita: no debe tratarse como una reserva.
func (a *Authority) PeekNextNumber(ctx context.Context, series string) (string, error) {
	if series == "" {
		return "", domain.NewValidationError("series", "no puede estar vacía")
	}
	sc := a.counter(series)

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if err := a.ensureLoaded(ctx, series, sc); err != nil {
		return "", err
	}
	return a.Format(series, sc.last+1), nil
}

// Format produce "<prefijo>-NNNNNN" con el contador a 6 dígitos. El prefijo
// puede cambiar por configuración sin resetear el contador: la clave del
// contador es la serie, no el prefijo mostrado.
func (a *Authority) Format(series string, n int64) string {
	prefix := series
	if p, ok := a.cfg.Prefixes[series]; ok && p != "" {
		prefix = p
	}
	if a.cfg.PrefixFor != nil {
		if p := a.cfg.PrefixFor(series); p != "" {
			prefix = p
		}
	}
	return fmt.Sprintf("%s-%06d", prefix, n)
}

func (a *Authority) counter(series string) *seriesCounter {
	a.mu.Lock()
	defer a.mu.Unlock()
	sc, ok := a.series[series]
	if !ok {
		sc = &seriesCounter{}
		a.series[series] = sc
	}
	return sc
}

// tryAcquire intenta el candado de la serie dentro del presupuesto.
func (a *Authority) tryAcquire(sc *seriesCounter) bool {
	for i := 0; i < a.cfg.LockAttempts; i++ {
		if sc.mu.TryLock() {
			return true
		}
		time.Sleep(a.cfg.LockBackoff)
	}
	return false
}

// ensureLoaded carga perezosamente el contador desde el almacén la primera
// vez que se usa la serie. Debe llamarse con sc.mu tomado.
func (a *Authority) ensureLoaded(ctx context.Context, series string, sc *seriesCounter) error {
	if sc.loaded {
		return nil
	}
	last, err := a.store.Load(ctx, series)
	if err != nil {
		return fmt.Errorf("cargar contador de la serie %q: %w", series, err)
	}
	if last < a.cfg.Start-1 {
		last = a.cfg.Start - 1
	}
	sc.last = last
	sc.loaded = true
	return nil
}
