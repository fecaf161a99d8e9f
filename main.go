// Package main, kovan backend uygulamasının giriş noktasıdır.
//
// Kovan, çok sunuculu bir topluluk platformunun üyelik ve yetkilendirme
// motorudur: rol tabanlı permission değerlendirme, moderasyon (mute/kick/ban),
// davet kodu ile katılım ve yapısal tutarlılık onarımı.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. Database'i başlat (embedded migration'lar ile)
//  3. Repository'leri oluştur (DB bağlantısı ile)
//  4. WebSocket Hub'ı başlat
//  5. Service'leri oluştur (repository'ler + hub ile)
//  6. Handler'ları oluştur (service'ler ile)
//  7. Middleware'ları oluştur
//  8. HTTP router'ı kur, route'ları bağla
//  9. CORS yapılandır
// 10. HTTP Server'ı başlat
// 11. Graceful shutdown
//
// Global değişken YOK — her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/akinalp/kovan/config"
	"github.com/akinalp/kovan/database"
	"github.com/akinalp/kovan/handlers"
	"github.com/akinalp/kovan/middleware"
	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/repository"
	"github.com/akinalp/kovan/services"
	"github.com/akinalp/kovan/ws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] kovan server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to open embedded migrations: %v", err)
	}

	db, err := database.New(cfg.Database.Path, migrationsFS)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. Repository Layer ───
	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	serverRepo := repository.NewSQLiteServerRepo(db.Conn)
	roleRepo := repository.NewSQLiteRoleRepo(db.Conn)
	memberRepo := repository.NewSQLiteMemberRepo(db.Conn)
	modRepo := repository.NewSQLiteModerationRepo(db.Conn)
	banRepo := repository.NewSQLiteBanRepo(db.Conn)

	// ─── 4. WebSocket Hub ───
	//
	// Hub, tüm WebSocket bağlantılarını yöneten merkezi yapıdır.
	// Service'ler hub'a EventPublisher interface'i üzerinden erişir —
	// concrete Hub struct'ına bağımlılık yok.
	hub := ws.NewHub()
	go hub.Run()

	// ─── 5. Service Layer ───
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	accessService := services.NewAccessService(serverRepo, memberRepo, roleRepo)
	serverService := services.NewServerService(db.Conn, serverRepo, memberRepo, cfg.Bootstrap, hub)
	roleService := services.NewRoleService(roleRepo, accessService, hub)
	memberService := services.NewMemberService(userRepo, memberRepo, roleRepo, serverRepo, accessService, hub)
	moderationService := services.NewModerationService(db.Conn, serverRepo, memberRepo, modRepo, banRepo, accessService, hub)
	inviteService := services.NewInviteService(db.Conn, serverRepo, memberRepo, roleRepo, banRepo, accessService, cfg.Bootstrap, hub)
	repairService := services.NewRepairService(db.Conn, serverRepo, memberRepo, roleRepo, cfg.Bootstrap)

	// ─── 6. Handler Layer ───
	authHandler := handlers.NewAuthHandler(authService)
	serverHandler := handlers.NewServerHandler(serverService)
	accessHandler := handlers.NewAccessHandler(accessService)
	roleHandler := handlers.NewRoleHandler(roleService)
	memberHandler := handlers.NewMemberHandler(memberService)
	moderationHandler := handlers.NewModerationHandler(moderationService)
	inviteHandler := handlers.NewInviteHandler(inviteService)
	repairHandler := handlers.NewRepairHandler(repairService)
	wsHandler := ws.NewHandler(hub, authService)

	// ─── 7. Middleware ───
	authMW := middleware.NewAuthMiddleware(authService, userRepo)
	serverMW := middleware.NewServerAccessMiddleware(memberRepo, accessService)
	permMW := middleware.NewPermissionMiddleware()

	// protected: auth zorunlu.
	protected := func(h http.HandlerFunc) http.Handler {
		return authMW.Require(http.HandlerFunc(h))
	}
	// inServer: auth + sunucu erişimi (üye veya owner) zorunlu.
	inServer := func(h http.Handler) http.Handler {
		return authMW.Require(serverMW.Require(h))
	}

	// ─── 8. HTTP Router ───
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"kovan"}`)
	})

	// Auth — public endpoint'ler (token gerekmez)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /api/auth/me", protected(authHandler.Me))

	// Servers
	mux.Handle("GET /api/servers", protected(serverHandler.ListMine))
	mux.Handle("POST /api/servers", protected(serverHandler.Create))
	mux.Handle("GET /api/servers/{serverID}", inServer(http.HandlerFunc(serverHandler.Get)))
	mux.Handle("DELETE /api/servers/{serverID}", inServer(http.HandlerFunc(serverHandler.Delete)))
	mux.Handle("POST /api/servers/{serverID}/leave", inServer(http.HandlerFunc(serverHandler.Leave)))

	// Access — kasıtlı olarak serverMW'nin DIŞINDA: üye olmayan aktör de
	// kendi duruşunu sorabilmeli (yanıt: hasAccess=false).
	mux.Handle("GET /api/servers/{serverID}/access", protected(accessHandler.Get))

	// Roles — listeleme her üyeye açık, CUD hiyerarşi kontrolü service'te
	mux.Handle("GET /api/servers/{serverID}/roles", inServer(http.HandlerFunc(roleHandler.List)))
	mux.Handle("POST /api/servers/{serverID}/roles", inServer(
		permMW.Require(models.PermManageRoles, http.HandlerFunc(roleHandler.Create))))
	mux.Handle("PATCH /api/servers/{serverID}/roles/{roleID}", inServer(
		permMW.Require(models.PermManageRoles, http.HandlerFunc(roleHandler.Update))))
	mux.Handle("DELETE /api/servers/{serverID}/roles/{roleID}", inServer(
		permMW.Require(models.PermManageRoles, http.HandlerFunc(roleHandler.Delete))))

	// Members
	mux.Handle("GET /api/servers/{serverID}/members", inServer(http.HandlerFunc(memberHandler.List)))
	mux.Handle("GET /api/servers/{serverID}/members/{userID}", inServer(http.HandlerFunc(memberHandler.Get)))
	mux.Handle("PATCH /api/servers/{serverID}/members/{userID}/nickname", inServer(
		http.HandlerFunc(memberHandler.UpdateNickname)))
	mux.Handle("PUT /api/servers/{serverID}/members/{userID}/roles", inServer(
		permMW.Require(models.PermManageRoles, http.HandlerFunc(memberHandler.ModifyRoles))))

	// Moderation — capability kontrolü action türüne göre service'te yapılır
	mux.Handle("POST /api/servers/{serverID}/moderation", inServer(http.HandlerFunc(moderationHandler.Apply)))
	mux.Handle("GET /api/servers/{serverID}/moderation/log", inServer(http.HandlerFunc(moderationHandler.ListLog)))
	mux.Handle("GET /api/servers/{serverID}/moderation/bans", inServer(http.HandlerFunc(moderationHandler.ListBans)))
	mux.Handle("DELETE /api/servers/{serverID}/moderation/mute/{userID}", inServer(http.HandlerFunc(moderationHandler.Unmute)))
	mux.Handle("DELETE /api/servers/{serverID}/moderation/ban/{userID}", inServer(http.HandlerFunc(moderationHandler.Unban)))

	// Invites — preview auth'suz; redeem auth'lu ama üyelik GEREKTIRMEZ
	// (katılmaya çalışan kullanıcı tanım gereği henüz üye değil)
	mux.HandleFunc("GET /api/invites/{code}", inviteHandler.Preview)
	mux.Handle("POST /api/invites/{code}/redeem", protected(inviteHandler.Redeem))
	mux.Handle("POST /api/servers/{serverID}/invite", inServer(http.HandlerFunc(inviteHandler.Rotate)))
	mux.Handle("DELETE /api/servers/{serverID}/invite", inServer(http.HandlerFunc(inviteHandler.Revoke)))

	// Repair — teşhis her üyeye açık; onarım owner kontrolü service'te
	mux.Handle("GET /api/servers/{serverID}/repair", inServer(http.HandlerFunc(repairHandler.Diagnose)))
	mux.Handle("POST /api/servers/{serverID}/repair", inServer(http.HandlerFunc(repairHandler.Repair)))

	// WebSocket — token query parameter ile authenticate edilir.
	// WS upgrade sırasında tarayıcılar custom header gönderemez,
	// handler token doğrulamasını kendi içinde yapar.
	mux.HandleFunc("GET /ws", wsHandler.HandleConnection)

	// ─── 9. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := corsHandler.Handler(mux)

	// ─── 10. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 11. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Önce WS bağlantıları, sonra HTTP server kapanır.
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
