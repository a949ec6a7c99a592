package extract

import (
	"regexp"
	"sort"
	"strings"
)

func ci(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

var (
	modelRes = ci(
		`ThinkPad\s+E14\s+Gen\s+\d+\s*\([^)]+\)`,
		`ProBook\s+\d+\s+G\d+`,
		`ProBook\s+\d+\s+\d+\.?\d*\s+inch\s+G\d+`,
		`Model:\s*([^\n]+)`,
	)
	processorRes = ci(
		`Intel[®]?\s+Core[™]?\s+i[3579]-\d+[A-Z]*`,
		`AMD\s+Ryzen[™]?\s+[3579]\s+\d+[A-Z]*`,
		`Core\s+i[3579]-\d+[A-Z]+`,
		`Processors?:\s*([^\n]+)`,
	)
	memoryRes = ci(
		`\d+GB\s+(?:soldered\s*\+\s*\d+GB\s+)?DDR[45](?:-\d+)?`,
		`Up to\s+\d+GB.*?DDR[45]`,
		`Memory:\s*([^\n]+)`,
		`RAM:\s*([^\n]+)`,
		`\d+GB\s+DDR[45]`,
	)
	storageRes = ci(
		`\d+GB\s+(?:PCIe|NVMe|M\.2)?\s*SSD`,
		`\d+TB\s+(?:PCIe|NVMe|M\.2)?\s*SSD`,
		`\d+GB\s+HDD`,
		`\d+TB\s+HDD`,
		`Storage:\s*([^\n]+)`,
		`M\.2\s+\d+\s+SSD`,
		`2\.5["']?\s+(?:SATA\s+)?(?:HDD|SSD)`,
	)
	displaySizeRe    = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*["']?\s*(?:inch|display)`)
	resolutionRe     = regexp.MustCompile(`(?i)(\d{3,4})\s*[x×]\s*(\d{3,4})`)
	resolutionNameRe = regexp.MustCompile(`(?i)FHD|WUXGA|WQXGA|2\.2K|4K|UHD`)
	brightnessRe     = regexp.MustCompile(`(?i)(\d+)\s*nits?`)
	touchRe          = regexp.MustCompile(`(?i)touch`)
	antiGlareRe      = regexp.MustCompile(`(?i)anti-glare`)

	graphicsRes = ci(
		`Intel[®]?\s+(?:Iris[®]?\s+)?(?:Xe\s+)?(?:UHD\s+)?Graphics`,
		`NVIDIA[®]?\s+GeForce\s+[^\n,]+`,
		`AMD\s+Radeon[™]?\s+[^\n,]+`,
		`Graphics:\s*([^\n]+)`,
		`Integrated\s+Graphics`,
	)
	batteryRes    = ci(`(\d+)\s*Wh`, `Battery:\s*([^\n]+)`, `(\d+)-cell`)
	weightRe      = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(?:kg|lbs?|pounds?)`)
	dimensionsRes = ci(
		`(\d+\.?\d*)\s*x\s*(\d+\.?\d*)\s*x\s*(\d+\.?\d*)\s*mm`,
		`(\d+\.?\d*)\s*x\s*(\d+\.?\d*)\s*x\s*(\d+\.?\d*)\s*inches?`,
		`Dimensions:\s*([^\n]+)`,
	)
	portRes = ci(
		`USB[- ]?C[®]?(?:\s+\d\.\d)?(?:\s+Gen\s+\d)?`,
		`USB[- ]?\d\.\d(?:\s+Gen\s+\d)?`,
		`USB\s+3\.2\s+Gen\s+\d`,
		`HDMI[®]?(?:\s+\d\.?\d?[a-z]?)?`,
		`Thunderbolt[™]?\s+\d`,
		`Ethernet`,
		`RJ-?45`,
		`Audio\s+Jack`,
		`Headphone/Microphone`,
		`SD\s+Card`,
		`DisplayPort[™]?`,
	)

	// RE2 has no lookahead; wifi6Re is checked against the following rune instead.
	wifi6Re     = regexp.MustCompile(`(?i)Wi-Fi[®]?\s+6`)
	wifi6eRe    = regexp.MustCompile(`(?i)Wi-Fi[®]?\s+6E`)
	wifi5Re     = regexp.MustCompile(`(?i)Wi-Fi[®]?\s+5|802\.11ac`)
	bluetoothRe = regexp.MustCompile(`(?i)Bluetooth`)
	btVersionRe = regexp.MustCompile(`(?i)Bluetooth[®]?\s+(\d+\.?\d*)`)

	osRes = ci(
		`Windows\s+11\s+(?:Pro|Home|Enterprise)?`,
		`Windows\s+10\s+(?:Pro|Home|Enterprise)?`,
		`Linux`,
		`Ubuntu`,
		`FreeDOS`,
		`No\s+OS`,
	)
	securityRes = ci(
		`TPM\s+\d+\.?\d*`,
		`dTPM\s+\d+\.?\d*`,
		`Fingerprint\s+(?:Reader|Sensor)`,
		`IR\s+Camera`,
		`Privacy\s+Shutter`,
		`Kensington\s+Lock`,
		`Smart\s+Card\s+Reader`,
		`BIOS\s+Password`,
		`Trusted\s+Platform\s+Module`,
	)
	cameraRes = ci(
		`(\d+)MP\s+(?:HD\s+)?Camera`,
		`(\d+\.?\d*)MP\s+(?:IR\s+)?(?:HD\s+)?(?:RGB\s+)?Camera`,
		`HD\s+Camera`,
		`FHD\s+Camera`,
		`IR\s+Camera`,
		`Camera:\s*([^\n]+)`,
	)
	cameraPrivacyRe = regexp.MustCompile(`(?i)Privacy\s+Shutter|ThinkShutter|Camera\s+Privacy`)
	audioRes        = ci(
		`Dual\s+Array\s+Microphone`,
		`Stereo\s+Speakers`,
		`Dolby\s+(?:Audio|Atmos)`,
		`Audio\s+by\s+\w+`,
		`(\d+W)\s+Speakers`,
		`Bang\s+&\s+Olufsen`,
		`DTS\s+Audio`,
	)

	maxDisplaysRe      = regexp.MustCompile(`(?i)(?:Supports\s+)?up\s+to\s+(\d+)\s+(?:independent\s+)?displays?`)
	monitorResolutions = ci(
		`(\d{4})x(\d{4})@(\d+)Hz`,
		`(\d{4})x(\d{3,4})@(\d+)Hz`,
		`4K\s+@\s*(\d+)Hz`,
		`5K\s+@\s*(\d+)Hz`,
	)
	hdmiSupportRe        = regexp.MustCompile(`(?i)HDMI.*?supports.*?(\d{4}x\d{3,4}@\d+Hz)`)
	usbcSupportRe        = regexp.MustCompile(`(?i)USB-C.*?supports.*?(\d{4}x\d{3,4}@\d+Hz)`)
	thunderboltSupportRe = regexp.MustCompile(`(?i)Thunderbolt.*?supports.*?(\d{4}x\d{3,4}@\d+Hz)`)

	chipsetRes = ci(
		`Intel[®]?\s+SoC\s+\(System\s+on\s+Chip\)`,
		`Intel[®]?\s+Chipset`,
		`AMD\s+Chipset`,
		`Chipset:\s*([^\n]+)`,
		`Platform\s+Controller\s+Hub`,
	)
	colourRes = ci(
		`Thunder\s+Black`,
		`Arctic\s+Grey`,
		`Natural\s+Silver`,
		`Pike\s+Silver`,
		`Storm\s+Grey`,
		`Colors?:\s*([^\n]+)`,
		`Colour:\s*([^\n]+)`,
		`\b(?:Black|Silver|Grey|Gray|White|Blue|Red|Gold)\b`,
	)
	materialRes = ci(
		`Aluminum(?:\s+Chassis)?`,
		`Aluminium(?:\s+Chassis)?`,
		`Magnesium\s+Alloy`,
		`Plastic`,
		`Carbon\s+Fiber`,
		`Metal`,
		`Material:\s*([^\n]+)`,
		`(?:Case|Chassis|Body)\s+Material:\s*([^\n]+)`,
	)
	ethernetRes = ci(
		`Gigabit\s+Ethernet`,
		`10/100/1000\s+Mbps`,
		`RJ-?45`,
		`Ethernet:\s*([^\n]+)`,
	)
	wwanRes = ci(
		`WWAN`,
		`LTE`,
		`5G`,
		`4G`,
		`Mobile\s+Broadband`,
		`CAT\d+\s+(?:LTE|4G|5G)`,
	)
	nfcRe       = regexp.MustCompile(`(?i)NFC`)
	warrantyRes = ci(
		`(\d+)[-\s]year\s+(?:limited\s+)?warranty`,
		`(\d+)[-\s]month\s+(?:limited\s+)?warranty`,
		`Warranty:\s*([^\n]+)`,
		`Limited\s+warranty`,
		`(\d+)yr\s+warranty`,
	)
	certificationRes = ci(
		`ENERGY\s+STAR[®]?`,
		`EPEAT[™]?\s+(?:Gold|Silver|Bronze)?`,
		`TCO\s+Certified`,
		`MIL-STD-810[HG]`,
		`MIL-SPEC`,
		`ISO\s+\d+`,
		`RoHS`,
		`\bCE\b`,
		`\bFCC\b`,
		`\bUL\b`,
		`TÜV`,
		`ErP\s+Lot\s+\d+`,
	)
	keyboardRes = ci(
		`Backlit\s+Keyboard`,
		`Spill-resistant\s+Keyboard`,
		`Full-size\s+Keyboard`,
		`(\d+)-key\s+Keyboard`,
		`Numeric\s+Keypad`,
		`TrackPoint`,
		`Keyboard:\s*([^\n]+)`,
	)
	touchpadRes = ci(
		`Precision\s+Touchpad`,
		`Multi-touch\s+(?:Gesture\s+)?Touchpad`,
		`Touchpad:\s*([^\n]+)`,
		`(\d+\.?\d*)["']?\s+Touchpad`,
		`Clickpad`,
	)
	trackPointRe = regexp.MustCompile(`(?i)TrackPoint`)
	adapterRes   = ci(
		`(\d+)W\s+(?:AC\s+)?(?:Power\s+)?Adapter`,
		`AC\s+Adapter:\s*(\d+)W`,
		`Power\s+Supply:\s*(\d+)W`,
	)
	powerDeliveryRes = ci(
		`Power\s+Delivery\s+(\d+\.?\d*)`,
		`PD\s+(\d+\.?\d*)`,
		`USB-C.*?Power\s+Delivery`,
	)
	rapidChargeRe = regexp.MustCompile(`(?i)(?:Rapid|Fast|Quick)\s+Charge(?:\s+\d+%\s+in\s+\d+\s+(?:min|minutes)?)?`)
	consumptionRe = regexp.MustCompile(`(?i)(?:TDP|Power\s+Consumption):\s*(\d+)W`)
)

// first returns the whole match of the first pattern that matches.
func first(text string, res []*regexp.Regexp) (string, bool) {
	for _, re := range res {
		if m := re.FindString(text); m != "" {
			return strings.TrimSpace(m), true
		}
	}
	return "", false
}

// collect gathers every match of every pattern. A pattern with one capture
// group contributes the group; with several, the groups joined by spaces.
// Results are de-duplicated and sorted.
func collect(text string, res []*regexp.Regexp) []string {
	seen := map[string]bool{}
	for _, re := range res {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			var v string
			switch len(m) {
			case 1:
				v = m[0]
			case 2:
				v = m[1]
			default:
				v = strings.Join(m[1:], " ")
			}
			if v = strings.TrimSpace(v); v != "" {
				seen[v] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func orNotSpecified(v []string) []string {
	if len(v) == 0 {
		return []string{notSpecified}
	}
	return v
}
