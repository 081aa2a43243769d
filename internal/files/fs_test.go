package files

import (
    "os"
    "path/filepath"
    "strings"
    "testing"
    "time"
)

func TestTempName(t *testing.T) {
    t.Parallel()
    dir := t.TempDir()
    a, b := TempName(dir), TempName(dir)
    if a == b {
        t.Fatalf("TempName returned the same name twice: %s", a)
    }
    for _, p := range []string{a, b} {
        if filepath.Dir(p) != dir {
            t.Fatalf("TempName(%q) = %q; wrong dir", dir, p)
        }
        base := filepath.Base(p)
        if !strings.HasPrefix(base, "video_") || !strings.HasSuffix(base, ".mp4") {
            t.Fatalf("unexpected name %q", base)
        }
        if !IsTempArtifact(p) || !IsTempArtifact(PartName(p)) {
            t.Fatalf("IsTempArtifact should match %q and its .part", base)
        }
    }
}

func TestIsTempArtifact(t *testing.T) {
    t.Parallel()
    cases := []struct {
        in   string
        want bool
    }{
        {"video_1b4e28ba-2fa1-11d2-883f-0016d3cca427.mp4", true},
        {"video_1b4e28ba-2fa1-11d2-883f-0016d3cca427.mp4.part", true},
        {"video_holiday.mp4", false},
        {"video_1b4e28ba-2fa1-11d2-883f-0016d3cca427.mkv", false},
        {"clip_1b4e28ba-2fa1-11d2-883f-0016d3cca427.mp4", false},
        {"notes.txt", false},
    }
    for i, tc := range cases {
        if got := IsTempArtifact(tc.in); got != tc.want {
            t.Fatalf("case %d: IsTempArtifact(%q) = %v; want %v", i, tc.in, got, tc.want)
        }
    }
}

func TestCleanup_RemovesFileAndPart(t *testing.T) {
    t.Parallel()
    p := TempName(t.TempDir())
    for _, f := range []string{p, PartName(p)} {
        if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
            t.Fatal(err)
        }
    }
    if err := Cleanup(p); err != nil {
        t.Fatalf("Cleanup() error = %v", err)
    }
    if Exists(p) || Exists(PartName(p)) {
        t.Fatalf("artifacts left behind")
    }
    // a second call on missing files is not an error
    if err := Cleanup(p); err != nil {
        t.Fatalf("Cleanup() on missing files error = %v", err)
    }
}

func TestCleanup_ReportsFailures(t *testing.T) {
    t.Parallel()
    p := TempName(t.TempDir())
    // os.Remove cannot delete a non-empty directory sitting at the file path
    if err := os.MkdirAll(filepath.Join(p, "child"), 0o755); err != nil {
        t.Fatal(err)
    }
    if err := os.WriteFile(PartName(p), []byte("x"), 0o644); err != nil {
        t.Fatal(err)
    }
    if err := Cleanup(p); err == nil {
        t.Fatalf("expected error for undeletable path")
    }
    if Exists(PartName(p)) {
        t.Fatalf(".part should still be removed when the main file fails")
    }
}

func TestCleanupOnce_OnlyTempArtifacts(t *testing.T) {
    t.Parallel()
    dir := t.TempDir()
    stale := TempName(dir)
    fresh := TempName(dir)
    user := filepath.Join(dir, "my_video.mp4")
    for _, f := range []string{stale, PartName(stale), fresh, user} {
        if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
            t.Fatal(err)
        }
    }
    old := time.Now().Add(-2 * time.Hour)
    for _, f := range []string{stale, PartName(stale), user} {
        if err := os.Chtimes(f, old, old); err != nil {
            t.Fatal(err)
        }
    }

    n, err := CleanupOnce(dir, time.Hour)
    if err != nil {
        t.Fatalf("CleanupOnce() error = %v", err)
    }
    if n != 2 {
        t.Fatalf("removed %d; want 2", n)
    }
    if Exists(stale) || Exists(PartName(stale)) {
        t.Fatalf("stale artifacts not removed")
    }
    if !Exists(fresh) || !Exists(user) {
        t.Fatalf("fresh artifact or user file removed")
    }

    // zero age sweeps every temp artifact, as done at startup
    if n, err := CleanupOnce(dir, 0); err != nil || n != 1 {
        t.Fatalf("CleanupOnce(0) = %d, %v; want 1, nil", n, err)
    }
    if !Exists(user) {
        t.Fatalf("user file removed")
    }
}

func TestHumanSize(t *testing.T) {
    t.Parallel()
    cases := []struct {
        in   int64
        want string
    }{
        {512, "512 B"},
        {2048, "2.00 KB"},
        {25 * 1024 * 1024, "25.00 MB"},
        {3 * 1024 * 1024 * 1024, "3.00 GB"},
    }
    for i, tc := range cases {
        if got := HumanSize(tc.in); got != tc.want {
            t.Fatalf("case %d: HumanSize(%d) = %q; want %q", i, tc.in, got, tc.want)
        }
    }
}
