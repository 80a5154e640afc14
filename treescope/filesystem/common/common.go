package common

// This package contains shared utilities and types used across filesystem packages.
// It provides common functionality for path manipulation, depth calculation,
// performance tracking, and error handling.

// Note: Utility types are defined in their respective files.
// Use constructors like common.NewPathUtils() to create instances.
