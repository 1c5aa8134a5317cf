// sisvantecctl es el CLI de administración del servicio de trámites.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sisvantec/sisvantec/internal/domain"
	"github.com/sisvantec/sisvantec/internal/policy"
	svcusuarios "github.com/sisvantec/sisvantec/internal/services/usuarios"
	"github.com/sisvantec/sisvantec/internal/store/pg"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	var (
		baseURL = envOr("SISVANTEC_URL", "http://localhost:8080")
		token   = envOr("SISVANTEC_TOKEN", "")
		out     = envOr("SISVANTEC_OUT", "text")
	)

	root := &cobra.Command{
		Use:   "sisvantecctl",
		Short: "CLI admin del servicio de trámites municipales",
	}
	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del API (env SISVANTEC_URL)")
	root.PersistentFlags().StringVar(&token, "token", token, "Token bearer (env SISVANTEC_TOKEN)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	cl := &client{HTTP: &http.Client{Timeout: 30 * time.Second}}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cl.BaseURL, cl.Token, cl.OutFormat = baseURL, token, out
	}

	// ping
	root.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Verifica el estado del servicio (/health)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/health", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("servicio degradado: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	})

	// login
	var loginEmail, loginPassword string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Obtiene un token de acceso",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _ := json.Marshal(map[string]string{"email": loginEmail, "password": loginPassword})
			status, body, err := cl.do("POST", "/api/auth/login", b)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("login falló: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "email de la cuenta")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "contraseña")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
	root.AddCommand(loginCmd)

	// usuarios
	usuariosCmd := &cobra.Command{Use: "usuarios", Short: "Gestión de cuentas (requiere superadmin)"}
	usuariosCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Lista las cuentas",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/api/auth/usuarios", nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	})
	root.AddCommand(usuariosCmd)

	// stats
	var statsMunicipio string
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Estadísticas de trámites (requiere staff)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/tramites/estadisticas"
			if statsMunicipio != "" {
				path += "?municipio=" + statsMunicipio
			}
			status, body, err := cl.do("GET", path, nil)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	statsCmd.Flags().StringVar(&statsMunicipio, "municipio", "", "municipio (solo superadmin)")
	root.AddCommand(statsCmd)

	// bootstrap: crea el primer superadmin directo contra el almacén.
	// Necesario porque /api/auth/registro exige un superadmin existente.
	var bsDSN, bsEmail, bsPassword, bsNombre string
	bootstrapCmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Crea el superadmin inicial directo en PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			st, err := pg.Connect(ctx, bsDSN)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close(context.Background()) }()

			repo := svcusuarios.NewRepo(st)
			svc := svcusuarios.NewService(repo, &policy.Engine{})
			u, err := svc.Create(ctx, policy.Perfil{UID: "bootstrap", Rol: domain.RolSuperadmin}, svcusuarios.CrearUsuario{
				Email:    bsEmail,
				Password: bsPassword,
				Nombre:   bsNombre,
				Rol:      domain.RolSuperadmin,
			})
			if err != nil {
				return err
			}
			fmt.Printf("superadmin creado: uid=%s email=%s\n", u.UID, u.Email)
			return nil
		},
	}
	bootstrapCmd.Flags().StringVar(&bsDSN, "dsn", envOr("STORAGE_DSN", ""), "DSN de PostgreSQL (env STORAGE_DSN)")
	bootstrapCmd.Flags().StringVar(&bsEmail, "email", "", "email del superadmin")
	bootstrapCmd.Flags().StringVar(&bsPassword, "password", "", "contraseña")
	bootstrapCmd.Flags().StringVar(&bsNombre, "nombre", "Superadmin", "nombre visible")
	_ = bootstrapCmd.MarkFlagRequired("email")
	_ = bootstrapCmd.MarkFlagRequired("password")
	root.AddCommand(bootstrapCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
