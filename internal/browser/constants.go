package browser

// ChromeUserAgent is used for all browser traffic so requests look like a
// recent, real desktop Chrome rather than a bare automation client.
//
// Updated: 2026-01-29 to Chrome 132 (current stable at authoring time).
// Next update: 2026-04-29 (quarterly schedule). Chrome ships a new stable
// roughly every 4 weeks; a quarterly bump keeps this within a reasonable
// version window without chasing every release.
const ChromeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.6834.160 Safari/537.36"

// stealthArgs are the Chromium command-line flags always applied, chosen
// to reduce automation fingerprinting and keep headless runs quiet.
var stealthArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--disable-infobars",
	"--disable-notifications",
	"--disable-extensions",
	"--disable-popup-blocking",
	"--disable-background-networking",
	"--disable-background-timer-throttling",
	"--disable-backgrounding-occluded-windows",
	"--disable-breakpad",
	"--disable-component-extensions-with-background-pages",
	"--disable-features=TranslateUI",
	"--disable-hang-monitor",
	"--disable-ipc-flooding-protection",
	"--disable-prompt-on-repost",
	"--metrics-recording-only",
	"--password-store=basic",
	"--use-mock-keychain",
	"--hide-scrollbars",
	"--mute-audio",
	"--no-first-run",
	"--no-default-browser-check",
}

// disableSecurityArgs are added only when the caller opted into
// disable_security; they weaken the browser's own protections and are
// logged at warn level whenever applied.
var disableSecurityArgs = []string{
	"--disable-web-security",
	"--disable-features=IsolateOrigins,site-per-process",
	"--ignore-certificate-errors",
}

// containerSandboxArgs are required whenever the process is detected to be
// running inside a container, since setuid sandboxing does not work there.
var containerSandboxArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
}
