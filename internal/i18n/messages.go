package i18n

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Message keys shared by handlers.
const (
	MsgNoEntries          = "entries.none"
	MsgMonthAway          = "entries.month_away"
	MsgMonthAwaySingular  = "entries.month_away_one"
	MsgTitleRequired      = "entries.title_required"
	MsgEntryNotFound      = "entries.not_found"
	MsgCollectionRequired = "collections.name_required"
	MsgCollectionNotFound = "collections.not_found"
	MsgFriendNotFound     = "friends.not_found"
	MsgCannotAddSelf      = "friends.cannot_add_self"
	MsgFriendAdded        = "friends.added"
	MsgCodeRequired       = "friends.code_required"
	MsgAuthRequired       = "auth.required"
	MsgInvalidBody        = "request.invalid_body"
	MsgInternal           = "request.internal"
	MsgForbidden          = "request.forbidden"
	MsgUserNotFound       = "users.not_found"
	MsgAvatarTooLarge     = "users.avatar_too_large"
	MsgChallengeNotFound  = "challenges.not_found"
	MsgEmailTaken         = "auth.email_taken"
	MsgBadCredentials     = "auth.bad_credentials"
	MsgSignedOut          = "auth.signed_out"
	MsgSignedUp           = "auth.signed_up"
	MsgSignedIn           = "auth.signed_in"
	MsgEntryCreated       = "entries.created"
	MsgEntryUpdated       = "entries.updated"
	MsgEntryDeleted       = "entries.deleted"
	MsgCollectionCreated  = "collections.created"
	MsgCollectionDeleted  = "collections.deleted"
	MsgAvatarUpdated      = "users.avatar_updated"
)

var catalog = map[string]map[string]string{
	"en": {
		MsgNoEntries:          "No entries for {{monthYear}}",
		MsgMonthAway:          "{{monthYear}} is {{days}} days away!",
		MsgMonthAwaySingular:  "{{monthYear}} is 1 day away!",
		MsgTitleRequired:      "Please enter a title",
		MsgEntryNotFound:      "Entry not found",
		MsgCollectionRequired: "Please enter a collection name",
		MsgCollectionNotFound: "Collection not found",
		MsgFriendNotFound:     "No user found with that friend code",
		MsgCannotAddSelf:      "You cannot add yourself as a friend",
		MsgFriendAdded:        "{{name}} is now your friend",
		MsgCodeRequired:       "Please enter a friend code",
		MsgAuthRequired:       "Authentication required",
		MsgInvalidBody:        "Invalid request body",
		MsgInternal:           "Something went wrong. Please try again.",
		MsgForbidden:          "You don't have access to that",
		MsgUserNotFound:       "User not found",
		MsgAvatarTooLarge:     "Profile pictures must be 5 MB or smaller",
		MsgChallengeNotFound:  "Challenge not found",
		MsgEmailTaken:         "An account with this email already exists",
		MsgBadCredentials:     "Invalid email or password",
		MsgSignedOut:          "Signed out",
		MsgSignedUp:           "User created successfully",
		MsgSignedIn:           "Login successful",
		MsgEntryCreated:       "Entry created",
		MsgEntryUpdated:       "Entry updated",
		MsgEntryDeleted:       "Entry deleted",
		MsgCollectionCreated:  "Collection created",
		MsgCollectionDeleted:  "Collection deleted",
		MsgAvatarUpdated:      "Avatar updated",
	},
	"es": {
		MsgNoEntries:          "No hay entradas para {{monthYear}}",
		MsgMonthAway:          "¡Faltan {{days}} días para {{monthYear}}!",
		MsgMonthAwaySingular:  "¡Falta 1 día para {{monthYear}}!",
		MsgTitleRequired:      "Por favor, escribe un título",
		MsgEntryNotFound:      "Entrada no encontrada",
		MsgCollectionRequired: "Por favor, escribe un nombre para la colección",
		MsgCollectionNotFound: "Colección no encontrada",
		MsgFriendNotFound:     "No hay ningún usuario con ese código de amigo",
		MsgCannotAddSelf:      "No puedes agregarte a ti mismo como amigo",
		MsgFriendAdded:        "{{name}} ahora es tu amigo",
		MsgCodeRequired:       "Por favor, escribe un código de amigo",
		MsgAuthRequired:       "Se requiere autenticación",
		MsgInvalidBody:        "Cuerpo de la solicitud no válido",
		MsgInternal:           "Algo salió mal. Inténtalo de nuevo.",
		MsgForbidden:          "No tienes acceso a eso",
		MsgUserNotFound:       "Usuario no encontrado",
		MsgAvatarTooLarge:     "La foto de perfil debe pesar 5 MB o menos",
		MsgChallengeNotFound:  "Desafío no encontrado",
		MsgEmailTaken:         "Ya existe una cuenta con este correo",
		MsgBadCredentials:     "Correo o contraseña incorrectos",
		MsgSignedOut:          "Sesión cerrada",
		MsgSignedUp:           "Usuario creado correctamente",
		MsgSignedIn:           "Inicio de sesión correcto",
		MsgEntryCreated:       "Entrada creada",
		MsgEntryUpdated:       "Entrada actualizada",
		MsgEntryDeleted:       "Entrada eliminada",
		MsgCollectionCreated:  "Colección creada",
		MsgCollectionDeleted:  "Colección eliminada",
		MsgAvatarUpdated:      "Foto de perfil actualizada",
	},
}

var monthNames = map[string][12]string{
	"en": {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	"es": {"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
}

// T renders key in lang, substituting {{name}} placeholders from args.
// Unknown languages fall back to English; unknown keys render as the key itself.
func T(lang, key string, args map[string]string) string {
	msgs, ok := catalog[lang]
	if !ok {
		msgs = catalog["en"]
	}
	msg, ok := msgs[key]
	if !ok {
		if msg, ok = catalog["en"][key]; !ok {
			return key
		}
	}
	for k, v := range args {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", v)
	}
	return msg
}

// TCtx renders key in the language carried by ctx.
func TCtx(ctx context.Context, key string, args map[string]string) string {
	return T(FromContext(ctx), key, args)
}

// MonthYear formats "April 2024" / "abril 2024".
func MonthYear(lang string, month time.Month, year int) string {
	names, ok := monthNames[lang]
	if !ok {
		names = monthNames["en"]
	}
	return names[month-1] + " " + strconv.Itoa(year)
}
