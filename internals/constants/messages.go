package constants

// Pesan yang ditampilkan ke user.
const (
	MsgIncorrectAdminCode = "❌ Incorrect admin code!"
	MsgNoneFound          = "No %s found."
	MsgSignInToUpload     = "Please sign in to upload notes."
	MsgFileTooLarge       = "File is too large (max 50 MB)."
)
