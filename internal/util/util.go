package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// RemoveContents elimina recursivamente todo lo que haya debajo de dir
// (archivos y subdirectorios), conservando el directorio raíz.
// Si el directorio no existe, no hace nada.
func RemoveContents(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("no se pudo leer el directorio %s: %w", dir, err)
	}

	for _, entry := range entries {
		target := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(target); err != nil {
			return fmt.Errorf("no se pudo eliminar %s: %w", target, err)
		}
	}

	return nil
}

// ResolveVars reemplaza las variables ${stage} y ${service} dentro de un
// valor de configuración (por ejemplo functionName o code).
func ResolveVars(value, service, stage string) string {
	resolved := strings.ReplaceAll(value, "${stage}", stage)
	resolved = strings.ReplaceAll(resolved, "${service}", service)
	return resolved
}

func Sha256Hash(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// CopyFile copia un archivo a otro directorio preservando permisos
func CopyFile(sourcePath, targetDir string) error {
	fileName := filepath.Base(sourcePath)
	targetPath := filepath.Join(targetDir, fileName)

	// Leer archivo fuente
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("no se pudo leer el archivo: %w", err)
	}

	// Obtener permisos del archivo original
	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("no se pudo obtener permisos: %w", err)
	}

	// Escribir archivo destino con mismos permisos
	err = os.WriteFile(targetPath, data, sourceInfo.Mode())
	if err != nil {
		return fmt.Errorf("no se pudo escribir el archivo: %w", err)
	}

	// Preservar timestamp (opcional pero útil para caching)
	err = os.Chtimes(targetPath, sourceInfo.ModTime(), sourceInfo.ModTime())
	if err != nil {
		log.Printf("⚠️ No se pudo preservar timestamp: %v", err)
	}

	return nil
}
