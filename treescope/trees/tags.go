package trees

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	TagTypeFile      = "file"
	TagTypeDirectory = "folder"

	TagPrefix = "type:" // Prefix for categorized tags
)

// GenerateTags generates tags based on the metadata of a file or directory
func GenerateTags(metadata Metadata, filename string) ([]string, error) {
	if err := metadata.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metadata: %w", err)
	}

	tags := []string{}

	switch metadata.NodeType {
	case Directory:
		tags = append(tags, TagTypeDirectory)
	case File:
		tags = append(tags, TagTypeFile)
	}

	// Tags based on file extension
	if metadata.NodeType == File && filename != "" {
		ext := strings.ToLower(filepath.Ext(filename))
		if ext != "" {
			// Remove the dot from extension
			ext = ext[1:]
			tags = append(tags, TagPrefix+ext)

			switch ext {
			case "txt", "md", "doc", "docx", "rtf", "pdf":
				tags = append(tags, TagPrefix+"document")
			case "jpg", "jpeg", "png", "gif", "bmp", "svg", "webp":
				tags = append(tags, TagPrefix+"image")
			case "mp4", "avi", "mkv", "mov", "wmv", "flv", "webm":
				tags = append(tags, TagPrefix+"video")
			case "mp3", "wav", "flac", "aac", "ogg", "m4a":
				tags = append(tags, TagPrefix+"audio")
			case "zip", "rar", "7z", "tar", "gz", "bz2":
				tags = append(tags, TagPrefix+"archive")
			case "js", "ts", "py", "go", "cpp", "c", "java", "rs", "php", "rb":
				tags = append(tags, TagPrefix+"code")
			case "json", "xml", "yaml", "yml", "toml", "csv":
				tags = append(tags, TagPrefix+"data")
			}
		}
	}

	// Tags based on modification time
	modAge := time.Since(metadata.ModifiedAt)

	switch {
	case modAge < 24*time.Hour:
		tags = append(tags, TagPrefix+"recent")
	case modAge < 7*24*time.Hour:
		tags = append(tags, TagPrefix+"thisweek")
	case modAge < 30*24*time.Hour:
		tags = append(tags, TagPrefix+"thismonth")
	case modAge < 365*24*time.Hour:
		tags = append(tags, TagPrefix+"thisyear")
	default:
		tags = append(tags, TagPrefix+"old")
	}

	// Tags based on file size
	sizeMB := float64(metadata.Size) / (1024 * 1024)

	switch {
	case metadata.Size == 0:
		tags = append(tags, TagPrefix+"empty")
	case sizeMB < 1:
		tags = append(tags, TagPrefix+"small")
	case sizeMB < 100:
		tags = append(tags, TagPrefix+"medium")
	default:
		tags = append(tags, TagPrefix+"large")
	}

	// Hidden entry tag
	if filename != "" && strings.HasPrefix(filename, ".") {
		tags = append(tags, TagPrefix+"hidden")
	}

	return tags, nil
}

// AddTagsToMetadataWithFilename adds tags to a Metadata struct with filename context
func AddTagsToMetadataWithFilename(metadata *Metadata, filename string) error {
	if metadata == nil {
		return fmt.Errorf("metadata cannot be nil")
	}

	tags, err := GenerateTags(*metadata, filename)
	if err != nil {
		return fmt.Errorf("failed to generate tags: %w", err)
	}

	metadata.Tags = removeDuplicates(tags)
	return nil
}

// removeDuplicates removes duplicate strings from a slice
func removeDuplicates(tags []string) []string {
	keys := make(map[string]bool)
	var result []string

	for _, tag := range tags {
		if !keys[tag] {
			keys[tag] = true
			result = append(result, tag)
		}
	}

	return result
}
