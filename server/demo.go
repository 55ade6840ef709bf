package server

import (
	"html/template"
	"net/http"
)

type demoView struct {
	ConfigURL string
	ClientID  string
	Accounts  []Account
}

var demoTemplate = template.Must(template.New("demo").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>FedCM Demo IdP</title>
<style>
body { font-family: Arial, sans-serif; margin: 2rem auto; max-width: 960px; color: #1d1d1f; }
h1 { font-size: 1.8rem; margin-bottom: 1rem; }
section { margin-bottom: 2rem; border: 1px solid #d0d0d5; border-radius: 8px; padding: 1rem 1.25rem; }
h2 { font-size: 1.2rem; margin-top: 0; }
label { display: block; margin-bottom: 0.5rem; font-weight: 600; }
input[type=text], select { width: 100%; padding: 0.5rem; margin-bottom: 1rem; }
button { padding: 0.6rem 1.2rem; font-size: 1rem; cursor: pointer; margin-right: 0.5rem; }
.code { background: #f5f5f5; padding: 1rem; border-radius: 8px; font-family: monospace; white-space: pre-wrap; word-break: break-word; }
.status { font-weight: 600; margin-bottom: 1rem; }
.notice { color: #555; }
</style>
</head>
<body>
<h1>FedCM Demo Identity Provider</h1>
<p class="notice">Sign in to the mock IdP below, then ask the browser for a federated credential. Requires a FedCM-capable browser.</p>

<section>
  <h2>IdP session</h2>
  <div id="session-status" class="status">Checking&hellip;</div>
  <label for="account">Account</label>
  <select id="account">
    {{range .Accounts}}
    <option value="{{.ID}}">{{.Name}} &lt;{{.Email}}&gt;</option>
    {{end}}
  </select>
  <button type="button" onclick="signIn()">Sign in</button>
  <button type="button" onclick="signOut()">Sign out</button>
</section>

<section>
  <h2>FedCM request</h2>
  <label for="config-url">Provider config URL</label>
  <input id="config-url" type="text" value="{{.ConfigURL}}" />
  <label for="client-id">Client ID</label>
  <input id="client-id" type="text" value="{{.ClientID}}" />
  <label for="nonce">Nonce</label>
  <input id="nonce" type="text" />
  <label for="context">Context</label>
  <select id="context">
    <option value="signin" selected>signin</option>
    <option value="signup">signup</option>
    <option value="use">use</option>
    <option value="continue">continue</option>
  </select>
  <label for="mediation">Mediation</label>
  <select id="mediation">
    <option value="optional" selected>optional</option>
    <option value="required">required</option>
    <option value="silent">silent</option>
  </select>
  <button type="button" onclick="requestCredential()">Request credential</button>
</section>

<section>
  <h2>Result</h2>
  <div id="result" class="code">No request made yet.</div>
</section>

<script>
async function refreshStatus() {
  const el = document.getElementById('session-status');
  try {
    const res = await fetch('/api/auth/status');
    const body = await res.json();
    if (body.signed_in) {
      el.textContent = 'Signed in as ' + body.account_id;
    } else {
      el.textContent = 'Signed out';
    }
  } catch (err) {
    el.textContent = 'Status unavailable: ' + err;
  }
}

async function signIn() {
  const form = new URLSearchParams();
  form.set('account_id', document.getElementById('account').value);
  const res = await fetch('/api/auth/signin', { method: 'POST', body: form });
  if (!res.ok) {
    const body = await res.json();
    document.getElementById('result').textContent = 'Sign-in failed: ' + body.error;
  }
  refreshStatus();
}

async function signOut() {
  await fetch('/api/auth/signout', { method: 'POST' });
  refreshStatus();
}

async function requestCredential() {
  const output = document.getElementById('result');
  if (!('IdentityCredential' in window)) {
    output.textContent = 'This browser does not support FedCM.';
    return;
  }
  output.textContent = 'Requesting credential...';
  try {
    const provider = {
      configURL: document.getElementById('config-url').value,
      clientId: document.getElementById('client-id').value,
      nonce: document.getElementById('nonce').value
    };
    const cred = await navigator.credentials.get({
      identity: {
        context: document.getElementById('context').value,
        providers: [ provider ]
      },
      mediation: document.getElementById('mediation').value
    });
    output.textContent = 'token: ' + cred.token + '\n\n' + decodeAssertion(cred.token);
  } catch (err) {
    output.textContent = 'FedCM request failed: ' + err;
  }
}

function decodeAssertion(token) {
  const parts = token.split('.');
  if (parts.length < 2) {
    return '(token is not a JWT)';
  }
  try {
    const payload = atob(parts[1].replace(/-/g, '+').replace(/_/g, '/'));
    return 'claims: ' + JSON.stringify(JSON.parse(payload), null, 2);
  } catch (err) {
    return '(could not decode payload: ' + err + ')';
  }
}

function randomNonce() {
  const buf = new Uint8Array(16);
  crypto.getRandomValues(buf);
  return Array.from(buf, function (b) { return b.toString(16).padStart(2, '0'); }).join('');
}

document.getElementById('nonce').value = randomNonce();
refreshStatus();
</script>
</body>
</html>
`))

// handleDemo renders the browser-facing playground: a mock sign-in control
// and a form that assembles a navigator.credentials.get call against this
// IdP.
func (a *App) handleDemo(w http.ResponseWriter, r *http.Request) {
	view := demoView{
		ConfigURL: a.requestOrigin(r) + fedcmBasePath + "/config.json",
		ClientID:  a.RelyingParties.DefaultClientID(),
		Accounts:  a.Directory.Accounts(r.Context()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := demoTemplate.Execute(w, view); err != nil {
		a.Logger.Error("render demo page", "error", err)
	}
}
