package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	// _ "github.com/mattn/go-sqlite3" // requires gcc
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	config "github.com/davicafu/hexasalon/internal/config"
	notificationApp "github.com/davicafu/hexasalon/internal/notification/application"
	notificationDomain "github.com/davicafu/hexasalon/internal/notification/domain"
	notificationEvents "github.com/davicafu/hexasalon/internal/notification/infra/inbound/events"
	notificationHttp "github.com/davicafu/hexasalon/internal/notification/infra/inbound/http"
	mongoRepo "github.com/davicafu/hexasalon/internal/notification/infra/outbound/db/mongodb"
	postgresRepo "github.com/davicafu/hexasalon/internal/notification/infra/outbound/db/postgre"
	sqliteRepo "github.com/davicafu/hexasalon/internal/notification/infra/outbound/db/sqlite"
	notificationPublisher "github.com/davicafu/hexasalon/internal/notification/infra/outbound/events"
	infraEvents "github.com/davicafu/hexasalon/internal/shared/infra/events"
	infraBus "github.com/davicafu/hexasalon/internal/shared/infra/platform/bus"
	infraCache "github.com/davicafu/hexasalon/internal/shared/infra/platform/cache"
	infraQueue "github.com/davicafu/hexasalon/internal/shared/infra/platform/queue"
	"github.com/davicafu/hexasalon/pkg/logger"
	sharedCache "github.com/davicafu/hexasalon/shared/platform/cache"
)

// ---------------- Main ----------------
func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.LogLevel) // inicializa zap
	log := logger.Logger()    // obtiene logger estructurado
	defer log.Sync()          // flush buffers al salir

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()

	// ---------------- DB ----------------
	// SQLite siempre: aloja la tabla customers que lee el scheduler de cumpleaños.
	db, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		log.Fatal("failed to open SQLite", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(1) // SQLite admite un único escritor
	if err := sqliteRepo.InitSQLite(db); err != nil {
		log.Fatal("failed to initialize SQLite", zap.Error(err))
	}

	repo, closeStore := openStore(ctx, cfg, db, log)
	defer closeStore()

	// ---------------- Cache ----------------
	var seenCache sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria", zap.Error(err))
		memCache := infraCache.NewInMemoryCache(cfg.DedupCacheTTL, 3*cfg.DedupCacheTTL)
		defer memCache.Stop()
		seenCache = memCache
	} else {
		seenCache = infraCache.NewRedisCache(rdb, "hexasalon:", cfg.DedupCacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// ---------------- Queue ----------------
	queue := infraQueue.NewAsyncQueue(infraQueue.Options{
		Concurrency: cfg.QueueConcurrency,
		MaxAttempts: cfg.QueueMaxAttempts,
		RetryDelay:  cfg.QueueRetryDelay,
	}, log)
	// Contexto propio: la cola debe drenar aunque llegue la señal de apagado.
	queueCtx, cancelQueue := context.WithCancel(context.Background())
	defer cancelQueue()
	queue.Start(queueCtx)

	// --------------- Pipeline --------------
	writerOpts := []notificationApp.WriterOption{notificationApp.WithSeenCache(seenCache, cfg.DedupCacheTTL)}
	dispatcher := infraBus.NewInMemoryDispatcher()

	if cfg.UseKafka {
		kafkaWriter := &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers...),
			Topic:    cfg.KafkaNotificationTopic,
			Balancer: &kafka.Hash{}, // misma key, misma partición
		}
		defer kafkaWriter.Close()
		publisher := notificationPublisher.NewKafkaNotificationPublisher(infraEvents.NewKafkaPublisher(kafkaWriter, log))
		writerOpts = append(writerOpts, notificationApp.WithPublisher(publisher))
	}

	if cfg.UseSNS {
		client, err := notificationPublisher.NewSNSClient(ctx, cfg.SNSRegion)
		if err != nil {
			log.Fatal("❌ No se pudo configurar AWS SNS", zap.Error(err))
		}
		snsPublisher, err := notificationPublisher.NewSNSNotificationPublisher(client, cfg.SNSTopicARN)
		if err != nil {
			log.Fatal("❌ Topic SNS inválido", zap.Error(err))
		}
		log.Info("📣 Reenviando notificaciones creadas a SNS", zap.String("topic", cfg.SNSTopicARN))
		writerOpts = append(writerOpts, notificationApp.WithPublisher(snsPublisher))
	}

	builder := notificationApp.NewDraftBuilder(loc, log)
	writer := notificationApp.NewWriter(repo, log, writerOpts...)
	bindings := notificationApp.NewLifecycleBindings(builder, writer, queue, log)
	bindings.Register(dispatcher)

	// ------------- Productores -------------
	// Arrancan con los handlers ya registrados: un evento publicado antes se perdería
	// con el offset ya commiteado.
	var producers []func()
	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka para eventos entre instancias")

		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaAppointmentTopic,
			GroupID:  cfg.KafkaGroupID,
			MinBytes: 10e3, // 10KB
			MaxBytes: 10e6, // 10MB
		})
		defer reader.Close()

		consumer := notificationEvents.NewAppointmentEventConsumer(dispatcher, log)
		adapter := infraEvents.NewConsumerAdapter(reader, cfg.KafkaAppointmentTopic, consumer, log)
		producers = append(producers, func() { adapter.Start(ctx) })
	} else {
		log.Info("⚡️ Usando solo el dispatcher en memoria")
	}

	directory := sqliteRepo.NewCustomerDirectorySQLite(db)
	scheduler := notificationApp.NewBirthdayScheduler(directory, dispatcher, cfg.BirthdayInterval, loc, log)
	producers = append(producers, func() { go scheduler.Start(ctx) })

	if err := startProducers(bindings, producers...); err != nil {
		log.Fatal("❌ No se pudieron arrancar los productores de eventos", zap.Error(err))
	}

	// ---------------- HTTP ----------------
	service := notificationApp.NewNotificationService(repo, log)
	router := gin.Default()
	notificationHttp.RegisterHealthRoutes(router)
	notificationHttp.RegisterNotificationRoutes(router, notificationHttp.NewNotificationHandler(service))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("🚀 Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("🛑 Apagando...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("⚠️ Error al detener el servidor HTTP", zap.Error(err))
	}
	if err := queue.Close(shutdownCtx); err != nil {
		log.Warn("⚠️ La cola no terminó de drenar", zap.Error(err))
	}
	stats := queue.Stats()
	log.Info("✅ Cola detenida",
		zap.Int64("succeeded", stats.Succeeded),
		zap.Int64("failed", stats.Failed),
		zap.Int64("dropped", stats.Dropped),
	)
}

var errBindingsNotRegistered = errors.New("bindings de notificaciones sin registrar")

// startProducers arranca consumidores y scheduler sólo si los handlers ya están suscritos.
func startProducers(bindings interface{ Registered() bool }, producers ...func()) error {
	if !bindings.Registered() {
		return errBindingsNotRegistered
	}
	for _, start := range producers {
		start()
	}
	return nil
}

// openStore elige el adapter según STORE_DRIVER. Devuelve también su función de cierre.
func openStore(ctx context.Context, cfg *config.Config, sqliteDB *sql.DB, log *zap.Logger) (notificationDomain.NotificationRepository, func()) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pg, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to open Postgres", zap.Error(err))
		}
		if err := pg.PingContext(ctx); err != nil {
			log.Fatal("failed to ping Postgres", zap.Error(err))
		}
		if err := postgresRepo.InitPostgres(pg); err != nil {
			log.Fatal("failed to initialize Postgres", zap.Error(err))
		}
		log.Info("✅ Store de notificaciones: Postgres")
		return postgresRepo.NewNotificationRepoPostgres(pg), func() { pg.Close() }

	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("failed to connect MongoDB", zap.Error(err))
		}
		repo, err := mongoRepo.NewNotificationRepoMongoDB(ctx, client, cfg.MongoDB)
		if err != nil {
			log.Fatal("failed to initialize MongoDB", zap.Error(err))
		}
		log.Info("✅ Store de notificaciones: MongoDB")
		return repo, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}

	default:
		if cfg.StoreDriver != config.DriverSQLite {
			log.Warn("⚠️ STORE_DRIVER desconocido, usando SQLite", zap.String("driver", cfg.StoreDriver))
		}
		if err := sqliteDB.PingContext(ctx); err != nil {
			log.Fatal("failed to ping SQLite", zap.Error(err))
		}
		log.Info("✅ Store de notificaciones: SQLite")
		return sqliteRepo.NewNotificationRepoSQLite(sqliteDB), func() {}
	}
}
