package bot

// File is the subset of Telegram's file metadata the relay needs to download it.
type File struct {
	FileID   string
	FilePath string
}
