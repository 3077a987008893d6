package models

import "errors"

// UserError porte un message affiché tel quel à l'acheteur.
type UserError struct {
	Message string
}

func NewUserError(message string) *UserError {
	return &UserError{Message: message}
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) UserMessage() string { return e.Message }

type userFacing interface {
	UserMessage() string
}

// UserMessage extrait le message destiné à l'acheteur, s'il y en a un dans la chaîne d'erreurs.
func UserMessage(err error) (string, bool) {
	var uf userFacing
	if errors.As(err, &uf) {
		return uf.UserMessage(), true
	}
	return "", false
}

// StatusCode renvoie le statut HTTP d'une réponse distante non-2xx, 0 pour une erreur réseau.
func StatusCode(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

// ServerMessage renvoie le champ "message" d'une réponse distante en erreur, s'il existe.
func ServerMessage(err error) string {
	var sm interface{ ServerMessage() string }
	if errors.As(err, &sm) {
		return sm.ServerMessage()
	}
	return ""
}
