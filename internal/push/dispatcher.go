package push

import (
	"time"

	"go.uber.org/zap"
)

const defaultWriteTimeout = 5 * time.Second

// Dispatcher serializes events and pushes them through the registry.
// Delivery is fire-and-forget: absent users are skipped, write failures are
// logged, the connection is evicted and the caller never sees an error.
type Dispatcher struct {
	registry     *Registry
	writeTimeout time.Duration
	log          *zap.SugaredLogger
}

func NewDispatcher(registry *Registry, writeTimeout time.Duration, log *zap.SugaredLogger) *Dispatcher {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &Dispatcher{
		registry:     registry,
		writeTimeout: writeTimeout,
		log:          log,
	}
}

type notificationFrame struct {
	Type             string `json:"type"`
	Message          string `json:"message"`
	NotificationType string `json:"notificationType"`
}

// Notify pushes a notification frame to the user, if connected.
func (d *Dispatcher) Notify(login string, message string, kind string) {
	d.send(login, notificationFrame{
		Type:             "notification",
		Message:          message,
		NotificationType: kind,
	})
}

// OrderUpdate pushes an orderUpdate frame. Extra fields (e.g. location) are
// merged into the frame next to orderId and status.
func (d *Dispatcher) OrderUpdate(login string, orderID string, status string, extra map[string]any) {
	frame := map[string]any{
		"type":    "orderUpdate",
		"orderId": orderID,
		"status":  status,
	}
	for k, v := range extra {
		frame[k] = v
	}
	d.send(login, frame)
}

func (d *Dispatcher) send(login string, frame any) {
	conn, ok := d.registry.Lookup(login)
	if !ok {
		return
	}

	// a slow or dead connection must not stall the caller
	if err := conn.SetWriteDeadline(time.Now().Add(d.writeTimeout)); err != nil {
		d.drop(login, conn, err)
		return
	}
	if err := conn.WriteJSON(frame); err != nil {
		d.drop(login, conn, err)
	}
}

func (d *Dispatcher) drop(login string, conn Conn, err error) {
	if d.log != nil {
		d.log.Infoln("push delivery failed, dropping connection", "user", login, "error", err.Error())
	}
	d.registry.UnregisterConn(login, conn)
	conn.Close()
}
