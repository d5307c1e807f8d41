package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/billgen/internal/config"
	"github.com/locvowork/billgen/internal/handler"
	"github.com/locvowork/billgen/internal/logger"
	"github.com/locvowork/billgen/internal/service"
	"github.com/locvowork/billgen/internal/statement"
)

// Messages shown to the person running the program.
const (
	MsgInitialized = "Приложение инициализировано. Вложите файлы в соответствующие папки и запустите еще раз."
	MsgNoStatement = "В папке %s нет файлов"
	MsgFileLocked  = "Произошла ошибка. Закройте все файлы Excel перед запуском."
	MsgUnexpected  = "Произошла непредвиденная ошибка."
	MsgDone        = "Готово. Создано квитанций: %d. Папка: %s"
	MsgBadSettings = "Ошибка в файле настроек %s. Подробности в журнале."
)

// SettingsError reports a settings file that could not be read or is invalid.
type SettingsError struct {
	Path string
	Err  error
}

func (e *SettingsError) Error() string {
	return fmt.Sprintf("failed to load settings %s: %v", e.Path, e.Err)
}

func (e *SettingsError) Unwrap() error { return e.Err }

type App struct {
	Echo     *echo.Echo
	Settings config.Settings
	Service  *service.BillService

	configPath string
}

func NewApp(configPath string) *App {
	return &App{
		Echo:       echo.New(),
		configPath: configPath,
	}
}

// Initialize loads settings, starts logging and creates missing folders.
// firstRun is true when the settings file or any folder had to be created,
// in which case there is nothing to process yet.
func (a *App) Initialize(ctx context.Context) (context.Context, bool, error) {
	settings, created, err := config.Load(a.configPath)
	if err != nil {
		return ctx, false, &SettingsError{Path: a.configPath, Err: err}
	}
	a.Settings = settings

	foldersCreated, err := config.EnsureFolders(settings)
	if err != nil {
		return ctx, false, fmt.Errorf("failed to create folders: %w", err)
	}

	logger.InitLogging(logger.Options{
		Dir:     settings.LogsFolder,
		Level:   settings.LogLevel,
		Console: true,
	})
	ctx = logger.WithLogger(ctx, map[string]interface{}{"run_id": uuid.NewString()})
	logger.InfoLog(ctx, "Settings loaded from %s", a.configPath)

	a.Service = service.NewBillService(settings)
	return ctx, created || foldersCreated, nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(billHandler *handler.BillHandler, metrics *handler.Metrics) {
	a.Echo.GET("/health", billHandler.HealthHandler)
	a.Echo.GET("/metrics", metrics.Handler())
	a.Echo.POST("/bills", billHandler.GenerateHandler, metrics.Middleware)
}

// Run generates bills from the configured folders.
func (a *App) Run(ctx context.Context) (*service.Summary, error) {
	summary, err := a.Service.Generate(ctx)
	if err != nil {
		return nil, err
	}
	logger.InfoLog(ctx, "Generated %d bills from %s", summary.Records, summary.Statement)
	return summary, nil
}

// Plan lists the bills a run would write.
func (a *App) Plan(ctx context.Context) (*service.Summary, error) {
	_, summary, err := a.Service.Plan(ctx)
	return summary, err
}

// Serve starts the HTTP interface on addr.
func (a *App) Serve(addr string) error {
	a.Echo.HideBanner = true
	a.RegisterMiddlewares()
	metrics := handler.NewMetrics()
	a.RegisterRoutes(handler.NewBillHandler(a.Service, metrics), metrics)
	return a.Echo.Start(addr)
}

// Shutdown stops the HTTP server and flushes the log file.
func (a *App) Shutdown(ctx context.Context) error {
	defer logger.Close()
	return a.Echo.Shutdown(ctx)
}

// UserMessage turns a run failure into the text shown to the user.
func (a *App) UserMessage(err error) string {
	var (
		noStatement *statement.NoStatementError
		settingsErr *SettingsError
	)
	switch {
	case errors.As(err, &noStatement):
		return fmt.Sprintf(MsgNoStatement, noStatement.Dir)
	case service.IsFileLocked(err):
		return MsgFileLocked
	case errors.As(err, &settingsErr):
		return fmt.Sprintf(MsgBadSettings, settingsErr.Path)
	default:
		return MsgUnexpected
	}
}
