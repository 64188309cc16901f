package usecase

import (
	"strings"
)

const (
	WelcomeMessage = "Welcome to simple socket server. Available command: 'any integer', 'list', 'exit'"

	commandList = "list"
	commandExit = "exit"

	listHeader         = "Connected users:"
	listSeparatorWidth = 50
)

var listSeparator = strings.Repeat("=", listSeparatorWidth)

type configHandler interface {
	GetPath() string
	AddObserver(func(interface{})) error
}
