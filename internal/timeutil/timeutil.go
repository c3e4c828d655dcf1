package timeutil

import "time"

// FileStampLayout is the timestamp layout embedded in generated file names.
const FileStampLayout = "20060102_150405"

// FileStamp formats value for use in a file name, in local time.
func FileStamp(value time.Time) string {
	return value.In(time.Local).Format(FileStampLayout)
}
