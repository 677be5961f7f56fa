package render

// Lambert com luz ambiente e uma luz direcional, cor por vértice e neblina exp2.
const iceVertexShader = `
#version 330
in vec3 vertexPosition;
in vec3 vertexNormal;
in vec4 vertexColor;

uniform mat4 mvp;
uniform mat4 matModel;
uniform mat4 matNormal;

out vec4 fragColor;
out vec3 fragNormal;
out vec3 fragPosition;

void main() {
    fragColor = vertexColor;
    fragPosition = vec3(matModel * vec4(vertexPosition, 1.0));
    fragNormal = normalize(vec3(matNormal * vec4(vertexNormal, 0.0)));
    gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`

const iceFragmentShader = `
#version 330
in vec4 fragColor;
in vec3 fragNormal;
in vec3 fragPosition;

uniform vec4 colDiffuse;
uniform vec3 lightDir;
uniform vec3 ambient;
uniform float lightIntensity;
uniform vec3 viewPos;
uniform vec3 fogColor;
uniform float fogDensity;

out vec4 finalColor;

void main() {
    // Face dupla: a normal vira para o lado visível
    vec3 n = normalize(fragNormal);
    if (!gl_FrontFacing) n = -n;

    float diffuse = max(dot(n, normalize(lightDir)), 0.0) * lightIntensity;
    vec3 light = min(ambient + vec3(diffuse), vec3(1.0));

    vec4 base = fragColor * colDiffuse;
    vec3 lit = base.rgb * light;

    float d = fogDensity * length(viewPos - fragPosition);
    float fog = clamp(exp(-d * d), 0.0, 1.0);
    finalColor = vec4(mix(fogColor, lit, fog), base.a);
}
`
