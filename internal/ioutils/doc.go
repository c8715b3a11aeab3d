// Package ioutils provides file system utilities for saving generated PDFs.
//
// This package contains functions for:
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - Atomic writes through a ".part" file
//   - Collision-free output paths
//
// # File Operations
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/home/ana/Downloads/Meus Livros de Colorir")
//
//	// Pick a free name and write it atomically
//	path := ioutils.UniquePath(dir, "bichos_interior.pdf")
//	err = ioutils.WriteFileAtomic(path, data)
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Livro: Bichos/1") // Returns "Livro_ Bichos_1"
package ioutils
