package hoaxcheck

import (
	"strings"
	"testing"
)

func TestExtractTitlePriority(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "og title wins",
			html: `<html><head>
				<meta property="og:title" content="Judul dari OG Tag">
				<meta name="twitter:title" content="Judul dari Twitter">
				<title>Judul dari Title</title>
			</head><body><h1>Judul dari H1</h1></body></html>`,
			want: "Judul dari OG Tag",
		},
		{
			name: "twitter title next",
			html: `<html><head>
				<meta name="twitter:title" content="Judul dari Twitter">
				<title>Judul dari Title</title>
			</head><body><h1>Judul dari H1</h1></body></html>`,
			want: "Judul dari Twitter",
		},
		{
			name: "h1 before document title",
			html: `<html><head><title>Judul dari Title</title></head>
			<body><h1>Judul dari H1</h1></body></html>`,
			want: "Judul dari H1",
		},
		{
			name: "document title as last resort",
			html: `<html><head><title>Judul dari Title</title></head><body></body></html>`,
			want: "Judul dari Title",
		},
		{
			name: "site suffix stripped",
			html: `<html><head><title>Banjir Melanda Jakarta - detikNews</title></head><body></body></html>`,
			want: "Banjir Melanda Jakarta",
		},
		{
			name: "junk og falls through to h1",
			html: `<html><head><meta property="og:title" content="detik"></head>
			<body><h1>Judul Sebenarnya Ada di Sini</h1></body></html>`,
			want: "Judul Sebenarnya Ada di Sini",
		},
	}

	e := NewExtractor(400)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := e.Extract([]byte(tt.html), "https://news.detik.com/x")
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if c.Title != tt.want {
				t.Errorf("Title = %q, want %q", c.Title, tt.want)
			}
		})
	}
}

func TestExtractBodyDropsNoise(t *testing.T) {
	html := `<html><body>
		<nav>Beranda | Berita | Olahraga</nav>
		<article>
			<p>Paragraf pertama berita yang sebenarnya.</p>
			<figure><figcaption>Keterangan foto yang harus hilang</figcaption></figure>
			<div class="read__also"><p>Baca juga tautan internal</p></div>
			<p>Paragraf kedua melanjutkan cerita.</p>
			<script>var x = 1;</script>
		</article>
		<footer>Hak cipta</footer>
	</body></html>`

	e := NewExtractor(400)
	c, err := e.Extract([]byte(html), "https://news.detik.com/x")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for _, want := range []string{"Paragraf pertama", "Paragraf kedua"} {
		if !strings.Contains(c.Text, want) {
			t.Errorf("Body lost %q: %q", want, c.Text)
		}
	}
	for _, junk := range []string{"Keterangan foto", "Baca juga tautan", "var x", "Beranda"} {
		if strings.Contains(c.Text, junk) {
			t.Errorf("Body kept noise %q: %q", junk, c.Text)
		}
	}
}

func TestExtractWholeBodyFallback(t *testing.T) {
	// Article text living outside <p> tags is still recovered.
	long := strings.Repeat("Kalimat panjang di dalam div tanpa paragraf. ", 20)
	html := `<html><body><div class="article-text">` + long + `</div></body></html>`

	e := NewExtractor(400)
	c, err := e.Extract([]byte(html), "https://news.detik.com/x")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(c.Text) < 400 {
		t.Errorf("Expected fallback to recover body, got %d chars", len(c.Text))
	}
}

func TestExtractPublishedAt(t *testing.T) {
	html := `<html><head>
		<meta property="article:published_time" content="2025-03-01T10:30:00+07:00">
	</head><body><p>isi</p></body></html>`

	e := NewExtractor(400)
	c, err := e.Extract([]byte(html), "https://news.detik.com/x")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if c.PublishedAt != "2025-03-01T03:30:00Z" {
		t.Errorf("PublishedAt = %q, want UTC normalization", c.PublishedAt)
	}
}

func TestFindAMPHref(t *testing.T) {
	tests := []struct {
		name string
		html string
		base string
		want string
	}{
		{
			name: "absolute href",
			html: `<html><head><link rel="amphtml" href="https://news.detik.com/amp/d-123"></head></html>`,
			base: "https://news.detik.com/d-123",
			want: "https://news.detik.com/amp/d-123",
		},
		{
			name: "relative href resolved",
			html: `<html><head><link rel="amphtml" href="/amp/d-123"></head></html>`,
			base: "https://news.detik.com/berita/d-123",
			want: "https://news.detik.com/amp/d-123",
		},
		{
			name: "no amp link",
			html: `<html><head><link rel="canonical" href="https://news.detik.com/d-123"></head></html>`,
			base: "https://news.detik.com/d-123",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindAMPHref([]byte(tt.html), tt.base); got != tt.want {
				t.Errorf("FindAMPHref = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCountSentences(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"Satu kalimat saja.", 1},
		{"Kalimat pertama. Kalimat kedua! Kalimat ketiga?", 3},
		{"Baris satu\nBaris dua", 2},
		{"a. b. Kalimat sungguhan.", 1}, // fragments of 3 chars or fewer ignored
	}
	for _, tt := range tests {
		if got := countSentences(tt.text); got != tt.want {
			t.Errorf("countSentences(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
