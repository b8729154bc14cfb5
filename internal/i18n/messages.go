package i18n

// Message keys used by the API layer.
const (
	KeyLoginOK          = "login_ok"
	KeyLoggedOut        = "logged_out"
	KeyInvalidCreds     = "invalid_credentials"
	KeyUnauthorized     = "unauthorized"
	KeyForbidden        = "forbidden"
	KeyTraversal        = "traversal"
	KeyUnknownDrive     = "unknown_drive"
	KeyNotFound         = "not_found"
	KeyExists           = "exists"
	KeyInvalidName      = "invalid_name"
	KeyFolderCreated    = "folder_created"
	KeyRenamed          = "renamed"
	KeyDeleted          = "deleted"
	KeyBulkDeleted      = "bulk_deleted"
	KeyClipboardSet     = "clipboard_set"
	KeyClipboardEmpty   = "clipboard_empty"
	KeyClipboardCleared = "clipboard_cleared"
	KeyPasted           = "pasted"
	KeyPastePartial     = "paste_partial"
	KeyPasteFailed      = "paste_failed"
	KeyUploaded         = "uploaded"
	KeyCompressed       = "compressed"
	KeyExtracted        = "extracted"
	KeyNotZip           = "not_zip"
	KeyBadZip           = "bad_zip"
	KeyInternal         = "internal_error"
)

var english = map[string]string{
	KeyLoginOK:          "You are now logged in as %s.",
	KeyLoggedOut:        "You have successfully logged out.",
	KeyInvalidCreds:     "Invalid username or password.",
	KeyUnauthorized:     "Authentication required.",
	KeyForbidden:        "Permission denied: you cannot access this location.",
	KeyTraversal:        "Operation denied: path traversal detected.",
	KeyUnknownDrive:     "Unknown drive.",
	KeyNotFound:         "Item not found.",
	KeyExists:           "An item with that name already exists.",
	KeyInvalidName:      "Invalid name.",
	KeyFolderCreated:    "Folder '%s' created successfully.",
	KeyRenamed:          "Item renamed from '%s' to '%s'.",
	KeyDeleted:          "Item '%s' deleted successfully.",
	KeyBulkDeleted:      "Successfully deleted %d item(s).",
	KeyClipboardSet:     "Ready to %s %d item(s). Navigate to the target folder and paste.",
	KeyClipboardEmpty:   "No items on the clipboard or session expired.",
	KeyClipboardCleared: "Clipboard cleared.",
	KeyPasted:           "Successfully %s %d item(s).",
	KeyPastePartial:     "%d item(s) %s, %d failed.",
	KeyPasteFailed:      "The operation failed for all selected items.",
	KeyUploaded:         "File '%s' uploaded successfully.",
	KeyCompressed:       "Compressed %d item(s) into '%s'.",
	KeyExtracted:        "Extracted %d file(s) from '%s'.",
	KeyNotZip:           "The specified file is not a ZIP archive.",
	KeyBadZip:           "The ZIP file is corrupted or not a valid archive.",
	KeyInternal:         "Internal server error.",
}

var spanish = map[string]string{
	KeyLoginOK:          "Has iniciado sesión como %s.",
	KeyLoggedOut:        "Has cerrado la sesión correctamente.",
	KeyInvalidCreds:     "Nombre de usuario o contraseña incorrectos.",
	KeyUnauthorized:     "Se requiere autenticación.",
	KeyForbidden:        "Permiso denegado: no puedes acceder a esta ubicación.",
	KeyTraversal:        "Operación denegada: se detectó un intento de salir del directorio permitido.",
	KeyUnknownDrive:     "Unidad desconocida.",
	KeyNotFound:         "Elemento no encontrado.",
	KeyExists:           "Ya existe un elemento con ese nombre.",
	KeyInvalidName:      "Nombre no válido.",
	KeyFolderCreated:    "Carpeta '%s' creada correctamente.",
	KeyRenamed:          "Elemento renombrado de '%s' a '%s'.",
	KeyDeleted:          "Elemento '%s' eliminado correctamente.",
	KeyBulkDeleted:      "Se eliminaron %d elemento(s) correctamente.",
	KeyClipboardSet:     "Listo para %s %d elemento(s). Navega a la carpeta de destino y pega.",
	KeyClipboardEmpty:   "No hay elementos en el portapapeles o la sesión expiró.",
	KeyClipboardCleared: "Portapapeles vaciado.",
	KeyPasted:           "Se %s %d elemento(s) correctamente.",
	KeyPastePartial:     "%d elemento(s) %s, %d fallaron.",
	KeyPasteFailed:      "La operación falló para todos los elementos seleccionados.",
	KeyUploaded:         "Archivo '%s' subido correctamente.",
	KeyCompressed:       "Se comprimieron %d elemento(s) en '%s'.",
	KeyExtracted:        "Se extrajeron %d archivo(s) de '%s'.",
	KeyNotZip:           "El archivo especificado no es un archivo ZIP.",
	KeyBadZip:           "El archivo ZIP está dañado o no es un archivo válido.",
	KeyInternal:         "Error interno del servidor.",
}
