package resolver

import (
	"testing"
)

func TestResolve_PrefersMetaOverJSONLD(t *testing.T) {
	markup := `<html><head>
		<script type="application/ld+json">{"@type":"NewsArticle","image":"https://x.test/b.jpg"}</script>
		<meta property="og:image" content="/a.jpg">
	</head><body></body></html>`

	got, ok := Resolve("https://x.test/page", markup)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if want := "https://x.test/a.jpg"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolve_RelativeContent(t *testing.T) {
	markup := `<meta property="og:image" content="/img/c.png">`
	got, ok := Resolve("https://x.test/articles/1", markup)
	if !ok || got != "https://x.test/img/c.png" {
		t.Errorf("got (%q, %v), want https://x.test/img/c.png", got, ok)
	}
}

func TestResolve_MetaVariants(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "twitter name",
			markup: `<meta name="twitter:image" content="https://cdn.test/t.png">`,
			want:   "https://cdn.test/t.png",
		},
		{
			name:   "og:image:secure_url substring",
			markup: `<meta property="og:image:secure_url" content="https://cdn.test/s.jpg">`,
			want:   "https://cdn.test/s.jpg",
		},
		{
			name:   "og:image as name attribute",
			markup: `<meta name="og:image" content="n.jpg">`,
			want:   "https://x.test/dir/n.jpg",
		},
		{
			name:   "link image_src",
			markup: `<link rel="image_src" href="/l.jpg">`,
			want:   "https://x.test/l.jpg",
		},
		{
			name:   "link rel set",
			markup: `<link rel="preload image_src" href="/set.jpg">`,
			want:   "https://x.test/set.jpg",
		},
		{
			name: "document order across link and meta",
			markup: `<link rel="image_src" href="/first.jpg">
				<meta property="og:image" content="/second.jpg">`,
			want: "https://x.test/first.jpg",
		},
		{
			name: "empty content is skipped",
			markup: `<meta property="og:image" content="">
				<meta name="twitter:image" content="/tw.jpg">`,
			want: "https://x.test/tw.jpg",
		},
		{
			name: "property wins over name",
			markup: `<meta property="description" name="twitter:image" content="/ignored.jpg">
				<meta property="og:image" content="/kept.jpg">`,
			want: "https://x.test/kept.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ResolveCandidate("https://x.test/dir/page", tt.markup)
			if !ok {
				t.Fatal("expected a candidate")
			}
			if c.URL != tt.want {
				t.Errorf("got %q, want %q", c.URL, tt.want)
			}
			if c.Strategy != StrategyMeta {
				t.Errorf("strategy = %q, want %q", c.Strategy, StrategyMeta)
			}
		})
	}
}

func TestResolve_JSONLD(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "string image",
			markup: `<script type="application/ld+json">{"image":"/j.jpg"}</script>`,
			want:   "https://x.test/j.jpg",
		},
		{
			name:   "image object with url",
			markup: `<script type="application/ld+json">{"image":{"@type":"ImageObject","url":"https://cdn.test/o.jpg"}}</script>`,
			want:   "https://cdn.test/o.jpg",
		},
		{
			name:   "image list",
			markup: `<script type="application/ld+json">{"image":[{"width":10},"https://cdn.test/2.jpg","https://cdn.test/3.jpg"]}</script>`,
			want:   "https://cdn.test/2.jpg",
		},
		{
			name:   "array of objects",
			markup: `<script type="application/ld+json">[{"@type":"Organization"},{"image":{"url":"/arr.png"}}]</script>`,
			want:   "https://x.test/arr.png",
		},
		{
			name: "malformed block is skipped",
			markup: `<script type="application/ld+json">{"image": "broken</script>
				<script type="application/ld+json">{"image":"/ok.jpg"}</script>`,
			want: "https://x.test/ok.jpg",
		},
		{
			name: "non ld+json scripts ignored",
			markup: `<script type="application/json">{"image":"/nope.jpg"}</script>
				<script type="Application/LD+JSON">{"image":"/yes.jpg"}</script>`,
			want: "https://x.test/yes.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ResolveCandidate("https://x.test/page", tt.markup)
			if !ok {
				t.Fatal("expected a candidate")
			}
			if c.URL != tt.want {
				t.Errorf("got %q, want %q", c.URL, tt.want)
			}
			if c.Strategy != StrategyJSONLD {
				t.Errorf("strategy = %q, want %q", c.Strategy, StrategyJSONLD)
			}
		})
	}
}

func TestResolve_MalformedJSONLDFallsThrough(t *testing.T) {
	markup := `<script type="application/ld+json">{not json</script>
		<img src="/big.jpg" width="300" height="200">`

	c, ok := ResolveCandidate("https://x.test/page", markup)
	if !ok {
		t.Fatal("expected the image fallback to produce a candidate")
	}
	if c.URL != "https://x.test/big.jpg" || c.Strategy != StrategyLargestImage {
		t.Errorf("got %+v", c)
	}
}

func TestResolve_LargestImage(t *testing.T) {
	markup := `<body>
		<img src="/small.jpg" width="100" height="100">
		<img src="/large.jpg" width="200" height="150">
	</body>`

	got, ok := Resolve("https://x.test/page", markup)
	if !ok || got != "https://x.test/large.jpg" {
		t.Errorf("got (%q, %v), want https://x.test/large.jpg", got, ok)
	}
}

func TestResolve_LargestImageTieKeepsFirst(t *testing.T) {
	markup := `<img src="/a.jpg" width="100" height="50">
		<img src="/b.jpg" width="50" height="100">`

	got, _ := Resolve("https://x.test/", markup)
	if got != "https://x.test/a.jpg" {
		t.Errorf("got %q, want first of equal-area images", got)
	}
}

func TestResolve_LargestImageHugeDimensions(t *testing.T) {
	tests := map[string]string{
		"product wraps int": `<img src="/small.jpg" width="10" height="10">
			<img src="/huge.jpg" width="4294967296" height="4294967296">`,
		"beyond int64": `<img src="/small.jpg" width="10" height="10">
			<img src="/huge.jpg" width="99999999999999999999" height="20">`,
	}

	for name, markup := range tests {
		t.Run(name, func(t *testing.T) {
			got, ok := Resolve("https://x.test/", markup)
			if !ok || got != "https://x.test/huge.jpg" {
				t.Errorf("got (%q, %v), want https://x.test/huge.jpg", got, ok)
			}
		})
	}
}

func TestResolve_LargestImageDataSrcAndBadDimensions(t *testing.T) {
	markup := `<img data-src="/lazy.jpg" width="400" height="300">
		<img src="/px.jpg" width="800px" height="600">
		<img src="/neg.jpg" width="-900" height="-900">`

	got, ok := Resolve("https://x.test/", markup)
	if !ok || got != "https://x.test/lazy.jpg" {
		t.Errorf("got (%q, %v), want https://x.test/lazy.jpg", got, ok)
	}
}

func TestResolve_None(t *testing.T) {
	tests := map[string]string{
		"empty":               ``,
		"undimensioned imgs":  `<img src="/a.jpg"><img src="/b.jpg">`,
		"img without sources": `<img width="500" height="500">`,
		"unrelated meta":      `<meta property="og:title" content="Hello"><meta name="description" content="x">`,
		"ld+json without img": `<script type="application/ld+json">{"@type":"NewsArticle","headline":"h"}</script>`,
	}

	for name, markup := range tests {
		t.Run(name, func(t *testing.T) {
			if got, ok := Resolve("https://x.test/", markup); ok {
				t.Errorf("expected no candidate, got %q", got)
			}
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	markup := `<head>
		<meta property="og:image" content="/one.jpg">
		<meta name="twitter:image" content="/two.jpg">
		<script type="application/ld+json">[{"image":["/three.jpg","/four.jpg"]}]</script>
	</head><body><img src="/five.jpg" width="10" height="10"></body>`

	first, _ := Resolve("https://x.test/p", markup)
	for i := 0; i < 50; i++ {
		got, _ := Resolve("https://x.test/p", markup)
		if got != first {
			t.Fatalf("run %d returned %q, first run returned %q", i, got, first)
		}
	}
}
