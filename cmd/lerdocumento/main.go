// cmd/lerdocumento: runs the document parsers on a local file and prints the
// extraction result as JSON, without touching the database.
// Uso: go run ./cmd/lerdocumento [-texto] arquivo.xml|arquivo.pdf
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"autopecas/internal/documento"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	somenteTexto := flag.Bool("texto", false, "imprime apenas o texto extraído do PDF")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "uso: %s [-texto] <arquivo>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("ler arquivo")
	}
	ehPDF := bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("%PDF"))

	if *somenteTexto {
		if !ehPDF {
			log.Fatal().Msg("-texto só se aplica a PDF")
		}
		texto, err := documento.ExtrairTextoPDF(data)
		if err != nil {
			log.Fatal().Err(err).Msg("extrair texto")
		}
		fmt.Println(texto)
		return
	}

	var res *documento.Resultado
	if ehPDF {
		res = documento.ParsePDF(data)
	} else {
		res = documento.ParseXML(data)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatal().Err(err).Msg("serializar resultado")
	}
	if !res.Sucesso {
		os.Exit(1)
	}
}
