package files

import (
    "context"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/google/uuid"
)

// имена временных файлов: video_<uuid>.mp4 и video_<uuid>.mp4.part
const (
    tempPrefix = "video_"
    tempExt    = ".mp4"
    partExt    = ".part"
)

// EnsureDir — создать директорию, если нет
func EnsureDir(dir string) error { return os.MkdirAll(dir, 0o755) }

// TempName — уникальное имя временного файла для одного вызова
func TempName(dir string) string {
    return filepath.Join(dir, tempPrefix+uuid.NewString()+tempExt)
}

// PartName — имя недокачанного файла yt-dlp
func PartName(path string) string { return path + partExt }

// IsTempArtifact — наш ли это временный файл (только с валидным uuid)
func IsTempArtifact(name string) bool {
    name = strings.TrimSuffix(filepath.Base(name), partExt)
    if !strings.HasPrefix(name, tempPrefix) || !strings.HasSuffix(name, tempExt) {
        return false
    }
    id := strings.TrimSuffix(strings.TrimPrefix(name, tempPrefix), tempExt)
    _, err := uuid.Parse(id)
    return err == nil
}

// FileSize — размер файла
func FileSize(path string) (int64, error) {
    fi, err := os.Stat(path)
    if err != nil { return 0, err }
    return fi.Size(), nil
}

// Exists — проверка существования файла
func Exists(path string) bool {
    _, err := os.Stat(path)
    return err == nil
}

// RemoveIfExists — удалить файл, если существует
func RemoveIfExists(path string) error {
    if _, err := os.Stat(path); err == nil {
        return os.Remove(path)
    } else if os.IsNotExist(err) {
        return nil
    } else {
        return err
    }
}

// Cleanup — удалить временный файл и его .part; ошибки собираются, не прерывают
func Cleanup(path string) error {
    var errs []error
    for _, p := range []string{path, PartName(path)} {
        if err := RemoveIfExists(p); err != nil {
            errs = append(errs, fmt.Errorf("remove %s: %w", filepath.Base(p), err))
        }
    }
    return errors.Join(errs...)
}

// HumanSize — человекочитаемый размер файла
func HumanSize(b int64) string {
    const (
        KB = 1024
        MB = KB * 1024
        GB = MB * 1024
    )
    switch {
    case b >= GB:
        return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
    case b >= MB:
        return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
    case b >= KB:
        return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
    default:
        return fmt.Sprintf("%d B", b)
    }
}

// StartCleanup — фоновая очистка брошенных временных файлов
func StartCleanup(ctx context.Context, dir string, ttlHours int) {
    if ttlHours <= 0 { return }
    interval := time.Hour
    go func() {
        ticker := time.NewTicker(interval)
        defer ticker.Stop()
        for {
            select {
            case <-ctx.Done():
                return
            case <-ticker.C:
                if _, err := CleanupOnce(dir, time.Duration(ttlHours)*time.Hour); err != nil {
                    log.Printf("[cleanup] failed: %v", err)
                }
            }
        }
    }()
}

// CleanupOnce — разовая очистка временных файлов старше заданного возраста
// чужие файлы в директории не трогаем
func CleanupOnce(dir string, olderThan time.Duration) (int, error) {
    cutoff := time.Now().Add(-olderThan)
    entries, err := os.ReadDir(dir)
    if err != nil { return 0, err }
    removed := 0
    for _, e := range entries {
        if e.IsDir() || !IsTempArtifact(e.Name()) { continue }
        p := filepath.Join(dir, e.Name())
        fi, err := e.Info()
        if err != nil { continue }
        if olderThan <= 0 || fi.ModTime().Before(cutoff) {
            if err := os.Remove(p); err != nil {
                log.Printf("[cleanup] remove %s failed: %v", p, err)
                continue
            }
            removed++
        }
    }
    return removed, nil
}
