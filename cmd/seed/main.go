// seed crea el usuario administrador inicial y los ajustes mínimos del
// emisor para un despliegue nuevo.
//
// Uso: go run ./cmd/seed -username admin -password <contraseña>
// Lee la conexión a PostgreSQL de las mismas env vars que el API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	appsettings "github.com/tu-usuario/factura-lv/internal/application/settings"
	"github.com/tu-usuario/factura-lv/internal/domain"
	"github.com/tu-usuario/factura-lv/internal/domain/entity"
	"github.com/tu-usuario/factura-lv/internal/infrastructure/postgres"
	"github.com/tu-usuario/factura-lv/pkg/config"
)

func main() {
	username := flag.String("username", "admin", "nombre del usuario administrador")
	email := flag.String("email", "", "correo del administrador")
	password := flag.String("password", "", "contraseña inicial (obligatoria)")
	companyName := flag.String("company", "", "nombre del emisor para los ajustes iniciales")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "se requiere -password")
		os.Exit(1)
	}
	if len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "la contraseña debe tener al menos 8 caracteres")
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar hash: %v\n", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(pool)
	user := &entity.User{
		Username:     *username,
		Email:        *email,
		PasswordHash: string(hash),
	}
	switch err := userRepo.Create(user); {
	case err == nil:
		fmt.Printf("usuario %q creado (id %s)\n", user.Username, user.ID)
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		fmt.Printf("usuario %q ya existe, sin cambios\n", *username)
	default:
		fmt.Fprintf(os.Stderr, "crear usuario: %v\n", err)
		os.Exit(1)
	}

	if *companyName != "" {
		settingsRepo := postgres.NewSettingsRepository(pool)
		seed := map[string]string{
			appsettings.KeyCompanyName:  *companyName,
			appsettings.KeySeriesPrefix: cfg.Billing.SeriesPrefix,
		}
		if err := settingsRepo.SetMany(seed); err != nil {
			fmt.Fprintf(os.Stderr, "guardar ajustes: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("ajustes iniciales del emisor guardados")
	}
}
