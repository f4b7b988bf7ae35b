package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/pkfinder/internal/table"
)

// usageLine is the one-line command syntax.
const usageLine = "pkfinder scan <file> [--worksheet <sheet>] [--range <list>] [--columns <n>] [--precision <p>] [--sort <o>] [--verbose]"

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show the command syntax",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(usageLine)
	},
}

var hilfeCmd = &cobra.Command{
	Use:   "hilfe",
	Short: "Zeigt die Hilfe auf Deutsch an",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Print(germanHelp())
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(hilfeCmd)
}

func germanHelp() string {
	r := strings.NewReplacer(
		"{syntax}", usageLine,
		"{types}", strings.Join(table.SupportedExtensions, ", "),
	)
	return r.Replace(`Primärschlüsselfinder

 Nutze --help für die englische Version dieser Hilfe.

BESCHREIBUNG:
 Liest eine Tabelle (Excel-Arbeitsblatt, CSV-Datei oder SQL-Tabelle) und sucht
 eine Spalte oder eine Kombination aus höchstens <n> Spalten (--columns), deren
 Werte jede Zeile eindeutig bestimmen. Erfüllt keine Kombination die Kriterien
 eines Primärschlüssels, hat die Tabelle keinen Primärschlüssel.

 Mit --precision werden Pseudo-Primärschlüssel vorgeschlagen: Kombinationen, in
 denen mindestens <p> % der Zeilen eindeutig sind. Wird kein Primärschlüssel
 gefunden, werden Vorschläge automatisch aufgelistet.

SYNTAX:
 {syntax}

PARAMETER:
 -w, --worksheet <sheet> Name oder Nummer des Arbeitsblatts. Standard ist das
                         erste Arbeitsblatt der Datei.
 -r, --range <list>      Beschränkt den Scan auf bestimmte Spalten, z. B. 1,4,5-9.
                         Die Spaltenindizes beginnen bei 1.
 -c, --columns <n>       Maximale Anzahl kombinierter Spalten. Standard ist 3.
                         Je höher <n>, desto länger dauert der Scan.
 -p, --precision <p>     Mindestanteil eindeutiger Zeilen in Prozent für
                         Pseudo-Primärschlüssel. 100 entspricht einem
                         Primärschlüssel, 0 jeder Spalte. Standard ist 99,9.
 -s, --sort <o>          1 = Primärschlüssel sofort, Vorschläge sortiert am Ende
                             (Standard).
                         2 = Alles sofort, Vorschläge unsortiert.
                         3 = Fortschrittsbalken, alles sortiert am Ende.
 -v, --verbose           Gibt jede getestete Spaltenkombination aus. Wird bei
                         --sort 3 ignoriert.
 -o, --output <format>   text, json oder yaml.

Unterstützte Dateitypen:
 {types}
`)
}
