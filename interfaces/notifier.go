package interfaces

type Notifier interface {
	Notify(message string) error
}
