package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// GracefulShutdown выполняет зарегистрированные функции завершения
// по сигналу SIGINT/SIGTERM или по явному вызову Shutdown
type GracefulShutdown struct {
	logger        *zap.Logger
	timeout       time.Duration
	mu            sync.Mutex
	shutdownFuncs []func(context.Context) error
	signals       chan os.Signal
	trigger       chan struct{}
	triggerOnce   sync.Once
	done          chan struct{}
	once          sync.Once
}

// NewGracefulShutdown создает новый экземпляр GracefulShutdown
func NewGracefulShutdown(logger *zap.Logger, timeout time.Duration) *GracefulShutdown {
	gs := &GracefulShutdown{
		logger:  logger,
		timeout: timeout,
		signals: make(chan os.Signal, 1),
		trigger: make(chan struct{}),
		done:    make(chan struct{}),
	}

	signal.Notify(gs.signals, syscall.SIGINT, syscall.SIGTERM)

	return gs
}

// AddShutdownFunc добавляет функцию для выполнения при завершении работы.
// Функции выполняются в обратном порядке добавления.
func (gs *GracefulShutdown) AddShutdownFunc(f func(context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.shutdownFuncs = append(gs.shutdownFuncs, f)
}

// Wait блокирует выполнение до сигнала завершения и выполняет функции завершения
func (gs *GracefulShutdown) Wait() {
	gs.WaitWithContext(context.Background())
}

// WaitWithContext блокирует выполнение до сигнала завершения, вызова Shutdown или отмены контекста
func (gs *GracefulShutdown) WaitWithContext(ctx context.Context) {
	select {
	case sig := <-gs.signals:
		gs.logger.Info("Получен сигнал завершения", zap.String("signal", sig.String()))
	case <-gs.trigger:
		gs.logger.Info("Запрошено завершение работы")
	case <-ctx.Done():
		gs.logger.Info("Контекст отменен, завершаем работу")
	}

	gs.run()
}

// Done возвращает канал, который закрывается после завершения всех операций
func (gs *GracefulShutdown) Done() <-chan struct{} {
	return gs.done
}

// Shutdown инициирует завершение работы и ждет его окончания
func (gs *GracefulShutdown) Shutdown() {
	gs.triggerOnce.Do(func() { close(gs.trigger) })
	gs.run()
}

func (gs *GracefulShutdown) run() {
	gs.once.Do(func() {
		signal.Stop(gs.signals)
		gs.shutdown()
		close(gs.done)
	})
	<-gs.done
}

// shutdown выполняет все зарегистрированные функции завершения (LIFO)
func (gs *GracefulShutdown) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
	defer cancel()

	gs.mu.Lock()
	funcs := make([]func(context.Context) error, len(gs.shutdownFuncs))
	copy(funcs, gs.shutdownFuncs)
	gs.mu.Unlock()

	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](ctx); err != nil {
			gs.logger.Error("Error during shutdown", zap.Error(err), zap.Int("func_index", i))
		}
	}

	gs.logger.Info("Graceful shutdown completed")
}
