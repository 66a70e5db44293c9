package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectConfig(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		delimiter rune
		skip      int
		headers   []string
		samples   int
	}{
		{
			name:      "comma separated",
			data:      "Fecha,Producto,Cantidad,Precio\n01/02/2024,Widget,2,\"10,50\"\n",
			delimiter: ',',
			headers:   []string{"Fecha", "Producto", "Cantidad", "Precio"},
			samples:   1,
		},
		{
			name:      "semicolon with BOM and CRLF",
			data:      "\uFEFFdate;product;qty;total\r\n2024-01-01;A;1;10\r\n2024-01-02;B;2;20\r\n",
			delimiter: ';',
			headers:   []string{"date", "product", "qty", "total"},
			samples:   2,
		},
		{
			name:      "metadata lines before header",
			data:      "Informe de ventas\nGenerado: 2024-03-01\n\nFecha\tProducto\tCantidad\tTotal\n2024-01-01\tA\t1\t10\n",
			delimiter: '\t',
			skip:      3,
			headers:   []string{"Fecha", "Producto", "Cantidad", "Total"},
			samples:   1,
		},
		{
			name:      "quoted comma decimal in first data row",
			data:      "Fecha,Producto,Cantidad,Total\n2024-01-01,Holiday pass,1,\"1.234,50\"\n",
			delimiter: ',',
			headers:   []string{"Fecha", "Producto", "Cantidad", "Total"},
			samples:   1,
		},
		{
			name:      "quoted delimiters in several data cells",
			data:      "Fecha,Producto,Cantidad,Precio\n01/02/2024,\"Item, large\",2,\"10,50\"\n02/02/2024,\"Day pass, adult\",1,\"3,00\"\n",
			delimiter: ',',
			headers:   []string{"Fecha", "Producto", "Cantidad", "Precio"},
			samples:   2,
		},
		{
			name:      "single keyword line beats wider plain line",
			data:      "ref;x;y;z;w\nFecha;a;b\n2024-01-01;1;2\n",
			delimiter: ';',
			headers:   []string{"Fecha", "a", "b"},
			skip:      1,
			samples:   1,
		},
		{
			name:      "no known keywords falls back to widest line",
			data:      "a|b|c\n1|2|3\n",
			delimiter: '|',
			headers:   []string{"a", "b", "c"},
			samples:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := DetectConfig([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.delimiter, cfg.Delimiter)
			assert.Equal(t, tt.skip, cfg.SkipLines)
			assert.Equal(t, tt.headers, cfg.Headers)
			assert.Len(t, cfg.SampleRows, tt.samples)
			assert.Len(t, cfg.Fingerprint, 64)
		})
	}
}

func TestDetectConfig_Errors(t *testing.T) {
	_, err := DetectConfig(nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = DetectConfig([]byte("  \n\n"))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = DetectConfig([]byte("fecha\n2024-01-01\n"))
	assert.ErrorIs(t, err, ErrNoHeadersFound)
}

func TestDetect_Options(t *testing.T) {
	data := []byte("x;y\nFecha,Producto,Cantidad\n2024-01-01,A,1\n")
	s := New([]string{"fecha"})

	cfg, err := s.Detect(data, &DetectOptions{HeaderRowIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, ',', cfg.Delimiter)
	assert.Equal(t, []string{"Fecha", "Producto", "Cantidad"}, cfg.Headers)

	cfg, err = s.Detect(data, &DetectOptions{HeaderRowIndex: 0, Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, cfg.Headers)

	_, err = s.Detect(data, &DetectOptions{HeaderRowIndex: 10})
	assert.ErrorIs(t, err, ErrNoHeadersFound)
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		delimiter rune
		count     int
	}{
		{"plain comma", "a,b,c", ',', 2},
		{"quoted commas ignored", `2024-01-01,"Item, large",2,"10,50"`, ',', 3},
		{"semicolon beats commas in quotes", `a;"1,5";"2,5";b`, ';', 3},
		{"tab", "a\tb", '\t', 1},
		{"no delimiter", "Generado: 2024-03-01", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delimiter, count := detectDelimiter(tt.line)
			assert.Equal(t, tt.delimiter, delimiter)
			assert.Equal(t, tt.count, count)
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"Fecha", "Precio Unitario"})
	b := Fingerprint([]string{" fecha ", "precio-unitario"})
	c := Fingerprint([]string{"Fecha", "Total"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestSkipLines(t *testing.T) {
	assert.Equal(t, []byte("c\n"), SkipLines([]byte("a\nb\nc\n"), 2))
	assert.Nil(t, SkipLines([]byte("a"), 1))
	assert.Equal(t, []byte("a"), SkipLines([]byte("a"), 0))
}
