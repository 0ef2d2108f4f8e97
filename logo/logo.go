package logo

import (
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

func Display() {
	s, _ := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("M", pterm.FgGreen.ToStyle()),
		putils.LettersFromStringWithStyle("ercantis", pterm.FgLightCyan.ToStyle())).Srender()
	pterm.DefaultCenter.Println(s)
	pterm.DefaultCenter.WithCenterEachLineSeparately().
		Println("Pay on chain, publish once.\nMercantis Project")
}
